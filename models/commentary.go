package models

// Commentary is the decoded commentary feed for a match. Only the
// miniscore block is used.
type Commentary struct {
	Miniscore       Miniscore `json:"miniscore"`
	Page            string    `json:"page"`
	EnableNoContent bool      `json:"enableNoContent"`
}

// Miniscore is the live state snapshot of a match.
type Miniscore struct {
	InningsID         int                 `json:"inningsId"`
	BatsmanStriker    MiniscoreBatsman    `json:"batsmanStriker"`
	BatsmanNonStriker MiniscoreBatsman    `json:"batsmanNonStriker"`
	BatTeam           MiniscoreBatTeam    `json:"batTeam"`
	BowlerStriker     MiniscoreBowler     `json:"bowlerStriker"`
	BowlerNonStriker  MiniscoreBowler     `json:"bowlerNonStriker"`
	Overs             float64             `json:"overs"`
	RecentOversStats  string              `json:"recentOvsStats"`
	Partnership       Partnership         `json:"partnerShip"`
	CurrentRunRate    float64             `json:"currentRunRate"`
	RequiredRunRate   float64             `json:"requiredRunRate"`
	LastWicket        *string             `json:"lastWicket"`
	MatchScoreDetails MatchScoreDetails   `json:"matchScoreDetails"`
	LatestPerformance []LatestPerformance `json:"latestPerformance"`
	OversRemaining    *float64            `json:"oversRem"`
	Status            string              `json:"status"`
}

// MiniscoreBatsman is a batsman currently at the crease.
type MiniscoreBatsman struct {
	ID         int     `json:"batId"`
	Name       string  `json:"batName"`
	Runs       int     `json:"batRuns"`
	Balls      int     `json:"batBalls"`
	Dots       int     `json:"batDots"`
	Fours      int     `json:"batFours"`
	Sixes      int     `json:"batSixes"`
	Minutes    int     `json:"batMins"`
	StrikeRate float64 `json:"batStrikeRate"`
}

// MiniscoreBatTeam is the batting side's running total.
type MiniscoreBatTeam struct {
	TeamID    int `json:"teamId"`
	TeamScore int `json:"teamScore"`
	TeamWkts  int `json:"teamWkts"`
}

// MiniscoreBowler is one of the two bowlers currently operating.
type MiniscoreBowler struct {
	ID      int     `json:"bowlId"`
	Name    string  `json:"bowlName"`
	Overs   float64 `json:"bowlOvs"`
	Maidens int     `json:"bowlMaidens"`
	Runs    int     `json:"bowlRuns"`
	Wickets int     `json:"bowlWkts"`
	NoBalls int     `json:"bowlNoballs"`
	Wides   int     `json:"bowlWides"`
	Economy float64 `json:"bowlEcon"`
}

// Partnership is the current stand.
type Partnership struct {
	Balls int `json:"balls"`
	Runs  int `json:"runs"`
}

// MatchScoreDetails is the match level summary inside the miniscore.
type MatchScoreDetails struct {
	MatchID          int            `json:"matchId"`
	InningsScoreList []InningsScore `json:"inningsScoreList"`
	TossResults      TossResults    `json:"tossResults"`
	MatchTeamInfo    []TeamInfo     `json:"matchTeamInfo"`
	MatchNotCovered  bool           `json:"isMatchNotCovered"`
	MatchFormat      string         `json:"matchFormat"`
	State            string         `json:"state"`
	CustomStatus     string         `json:"customStatus"`
	HighlightedTeam  int            `json:"highlightedTeamId"`
}

// InningsScore is a completed or in-progress innings total.
type InningsScore struct {
	InningsID   int     `json:"inningsId"`
	BatTeamID   int     `json:"batTeamId"`
	BatTeamName string  `json:"batTeamName"`
	Score       int     `json:"score"`
	Wickets     int     `json:"wickets"`
	Overs       float64 `json:"overs"`
	Declared    bool    `json:"isDeclared"`
	FollowOn    bool    `json:"isFollowOn"`
}

// TossResults describes who won the toss and what they chose.
type TossResults struct {
	TossWinnerID   int    `json:"tossWinnerId"`
	TossWinnerName string `json:"tossWinnerName"`
	Decision       string `json:"decision"`
}

// TeamInfo pairs the batting and bowling sides of an innings.
type TeamInfo struct {
	BattingTeamID        int    `json:"battingTeamId"`
	BattingTeamShortName string `json:"battingTeamShortName"`
	BowlingTeamID        int    `json:"bowlingTeamId"`
	BowlingTeamShortName string `json:"bowlingTeamShortName"`
}

// LatestPerformance is a short recent-form summary such as "Last 5 overs".
type LatestPerformance struct {
	Runs  int    `json:"runs"`
	Wkts  int    `json:"wkts"`
	Label string `json:"label"`
}
