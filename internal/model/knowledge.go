package model

import "time"

// Entry is one remembered column-name-to-field-type association in the
// knowledge base. Names are unique case-insensitively within a bucket.
type Entry struct {
	Name            string     `json:"name"`
	Confidence      int        `json:"confidence"`
	DetectionCount  int        `json:"detectionCount"`
	FirstDetectedAt time.Time  `json:"firstDetectedAt"`
	LastDetectedAt  *time.Time `json:"lastDetectedAt,omitempty"`
	SubType         string     `json:"subType,omitempty"`
}

// MatchType distinguishes how a knowledge-base lookup matched a column name.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial" // one name is a substring of the other
	MatchFuzzy   MatchType = "fuzzy"   // token overlap
)

// Match is the result of a knowledge-base lookup for one column name.
type Match struct {
	MatchedColumn  string    `json:"matchedColumn"`
	Confidence     float64   `json:"confidence"`
	MatchType      MatchType `json:"matchType"`
	DetectionCount int       `json:"detectionCount"`
	SubType        string    `json:"subType,omitempty"`
}
