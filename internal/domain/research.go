package domain

import "time"

// Finding - one piece of external evidence gathered for a topic.
type Finding struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Angle     string  `json:"angle"`
	Published string  `json:"published,omitempty"`
}

// ResearchContext - everything gathered about a topic before
// generation: web findings per research angle plus curated facts from
// the knowledge base.
type ResearchContext struct {
	Topic      string    `json:"topic"`
	Findings   []Finding `json:"findings"`
	Facts      []Fact    `json:"facts"`
	GatheredAt time.Time `json:"gathered_at"`
}

// IsEmpty reports whether research produced nothing usable.
func (rc ResearchContext) IsEmpty() bool {
	return len(rc.Findings) == 0 && len(rc.Facts) == 0
}
