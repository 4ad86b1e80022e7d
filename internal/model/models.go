package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded resume held in memory for the duration of
// one request. Nothing retains it after the upstream call returns.
type Document struct {
	Filename string
	Data     []byte
}

// MatchResult is the outcome of matching one resume against one job
// description. Score is on the service's 0..10 scale, rounded to two
// decimals upstream.
type MatchResult struct {
	MatchScore   float64           `json:"match_score"`
	ParsedResume map[string]string `json:"parsed_resume"`
}

// BulkMatch is one entry of a bulk-match response. The service returns
// entries sorted by score descending, already filtered by min_score.
type BulkMatch struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// Operation kinds recorded in the activity history
const (
	KindParse     = "parse"
	KindMatch     = "match"
	KindBulkMatch = "bulk-match"
)

// HistoryEntry is one completed operation in the activity log.
// Score is nil for parse-only uploads; MatchCount is zero except for
// bulk matches.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	Filenames  []string  `json:"filenames"`
	Score      *float64  `json:"score,omitempty"`
	MatchCount int       `json:"matchCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
