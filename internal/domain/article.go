package domain

import (
	"fmt"
	"strings"
	"time"
)

const maxTopicLength = 200

// GenerationRequest describes one article to produce.
type GenerationRequest struct {
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords,omitempty"`
	WordCountTarget int      `json:"word_count_target"`
}

func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}
	if len(r.Topic) > maxTopicLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTopicTooLong, len(r.Topic), maxTopicLength)
	}
	if r.WordCountTarget <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWordTarget, r.WordCountTarget)
	}
	return nil
}

// Draft - a generated article body before the quality gate.
type Draft struct {
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

// Article - a draft that cleared (or was force-published past) the gate.
type Article struct {
	ID         string      `json:"id"`
	Topic      string      `json:"topic"`
	Content    string      `json:"content"`
	HTML       string      `json:"html,omitempty"`
	WordCount  int         `json:"word_count"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
