package models

import "time"

// Match is everything known about one live match after a poll.
type Match struct {
	ShortName     string
	MatchID       string
	CommentaryURL string
	Info          *Commentary
	Scorecard     []InningsRecord
	UpdatedAt     time.Time
}

// Snapshot is the recorded form of a match at a point in time.
type Snapshot struct {
	MatchID    string          `json:"match_id"`
	ShortName  string          `json:"short_name"`
	Status     string          `json:"status"`
	Innings    []InningsRecord `json:"innings"`
	CapturedAt time.Time       `json:"captured_at"`
}

// PollResult summarises a single refresh of the live match set.
type PollResult struct {
	// Removed holds indexes, relative to the match list before the
	// refresh, of matches that are no longer live. Ascending.
	Removed   []int
	Added     int
	Refreshed int
	Failed    int
}
