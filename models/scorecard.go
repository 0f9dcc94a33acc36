// Package models defines data structures for the live scores client.
package models

// LiveMatchRef identifies a live match found on the listing page.
type LiveMatchRef struct {
	ShortName string `json:"short_name"`
	MatchID   string `json:"match_id"`
}

// BatsmanRecord is one batting row of a scorecard. Values are kept as
// display text exactly as the page formats them.
type BatsmanRecord struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Runs       string `json:"runs"`
	Balls      string `json:"balls"`
	Fours      string `json:"fours"`
	Sixes      string `json:"sixes"`
	StrikeRate string `json:"strike_rate"`
}

// BowlerRecord is one bowling row of a scorecard.
type BowlerRecord struct {
	Name    string `json:"name"`
	Overs   string `json:"overs"`
	Maidens string `json:"maidens"`
	Runs    string `json:"runs"`
	Wickets string `json:"wickets"`
	NoBalls string `json:"no_balls"`
	Wides   string `json:"wides"`
	Economy string `json:"economy"`
}

// InningsRecord holds the batting and bowling tables of one innings.
// Number is the innings number on the page (1 to 4); absent innings leave
// gaps, so it can differ from the record's position in a scorecard.
type InningsRecord struct {
	Number         int             `json:"number"`
	BatsmanDetails []BatsmanRecord `json:"batsman_details"`
	YetToBat       string          `json:"yet_to_bat"`
	BowlerDetails  []BowlerRecord  `json:"bowler_details"`
}
