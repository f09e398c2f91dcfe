package domain

import (
	"net/url"
	"strings"
	"time"
)

// Fact - a medical claim gathered during topic research.
type Fact struct {
	ID          string
	Topic       string
	Content     string
	SourceURL   string // may be empty
	Evidence    EvidenceLevel
	ExtractedAt time.Time
}

func (f *Fact) Validate() error {
	if strings.TrimSpace(f.Content) == "" {
		return ErrEmptyFactContent
	}
	if !f.Evidence.IsValid() {
		return ErrInvalidEvidence
	}
	if f.SourceURL != "" {
		if _, err := url.ParseRequestURI(f.SourceURL); err != nil {
			return ErrInvalidFactURL
		}
	}
	return nil
}

// EvidenceLevel - how well a fact is supported by its source.
type EvidenceLevel string

const (
	EvidenceStrong   EvidenceLevel = "strong"
	EvidenceModerate EvidenceLevel = "moderate"
	EvidenceWeak     EvidenceLevel = "weak"
)

func (l EvidenceLevel) IsValid() bool {
	switch l {
	case EvidenceStrong, EvidenceModerate, EvidenceWeak:
		return true
	}
	return false
}

func (l EvidenceLevel) String() string { return string(l) }
