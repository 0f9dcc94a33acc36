package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aluiziolira/go-cricket-live/models"
)

// NoLiveMatches is shown when there is nothing to follow.
const NoLiveMatches = "No live matches"

// Render writes the tab bar, the miniscore of the focused match and its
// innings, most recent first, skipping st.Scroll innings.
func Render(w io.Writer, matches []models.Match, st *State) error {
	var b strings.Builder

	if len(matches) == 0 {
		b.WriteString(NoLiveMatches + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	focused := st.FocusedTab
	if focused < 0 || focused >= len(matches) {
		focused = 0
	}
	m := matches[focused]

	b.WriteString(tabBar(matches, focused))
	b.WriteString("\n\n")

	if m.Info != nil {
		b.WriteString(summaryTable(m).Render())
		b.WriteString("\n")
		ms := m.Info.Miniscore
		if ms.BatsmanStriker.Name != "" || ms.BatsmanNonStriker.Name != "" {
			b.WriteString(creaseTable(ms).Render())
			b.WriteString("\n")
		}
		if ms.BowlerStriker.Name != "" || ms.BowlerNonStriker.Name != "" {
			b.WriteString(attackTable(ms).Render())
			b.WriteString("\n")
		}
	}

	skip := st.Scroll
	if skip < 0 {
		skip = 0
	}
	shown := 0
	for i := len(m.Scorecard) - 1; i >= 0; i-- {
		if shown < skip {
			shown++
			continue
		}
		innings := m.Scorecard[i]
		number := innings.Number
		if number == 0 {
			number = i + 1
		}
		b.WriteString(battingTable(number, innings).Render())
		b.WriteString("\n")
		if len(innings.BowlerDetails) > 0 {
			b.WriteString(bowlingTable(innings).Render())
			b.WriteString("\n")
		}
	}

	if !m.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "updated %s\n", m.UpdatedAt.Format("15:04:05"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func tabBar(matches []models.Match, focused int) string {
	tabs := make([]string, 0, len(matches))
	for i, m := range matches {
		if i == focused {
			tabs = append(tabs, "["+m.ShortName+"]")
			continue
		}
		tabs = append(tabs, " "+m.ShortName+" ")
	}
	return strings.Join(tabs, "|")
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func summaryTable(m models.Match) table.Writer {
	ms := m.Info.Miniscore
	t := newTable(m.ShortName)

	for _, score := range ms.MatchScoreDetails.InningsScoreList {
		line := fmt.Sprintf("%d/%d (%s ov)", score.Score, score.Wickets, formatFloat(score.Overs))
		if score.Declared {
			line += " d"
		}
		t.AppendRow(table.Row{score.BatTeamName, line})
	}
	if ms.Status != "" {
		t.AppendRow(table.Row{"Status", ms.Status})
	}
	if toss := ms.MatchScoreDetails.TossResults; toss.TossWinnerName != "" {
		t.AppendRow(table.Row{"Toss", toss.TossWinnerName + " opt to " + toss.Decision})
	}
	t.AppendRow(table.Row{"CRR", formatFloat(ms.CurrentRunRate)})
	if ms.RequiredRunRate > 0 {
		t.AppendRow(table.Row{"RRR", formatFloat(ms.RequiredRunRate)})
	}
	t.AppendRow(table.Row{"Partnership", fmt.Sprintf("%d (%d)", ms.Partnership.Runs, ms.Partnership.Balls)})
	if ms.LastWicket != nil && *ms.LastWicket != "" {
		t.AppendRow(table.Row{"Last wicket", *ms.LastWicket})
	}
	if ms.OversRemaining != nil {
		t.AppendRow(table.Row{"Overs left", formatFloat(*ms.OversRemaining)})
	}
	if ms.RecentOversStats != "" {
		t.AppendRow(table.Row{"Recent", ms.RecentOversStats})
	}
	return t
}

func creaseTable(ms models.Miniscore) table.Writer {
	t := newTable("")
	t.AppendHeader(table.Row{"Batter", "R", "B", "4s", "6s", "SR"})
	for i, bat := range []models.MiniscoreBatsman{ms.BatsmanStriker, ms.BatsmanNonStriker} {
		if bat.Name == "" {
			continue
		}
		name := bat.Name
		if i == 0 {
			name += " *"
		}
		t.AppendRow(table.Row{name, bat.Runs, bat.Balls, bat.Fours, bat.Sixes, formatFloat(bat.StrikeRate)})
	}
	return t
}

func attackTable(ms models.Miniscore) table.Writer {
	t := newTable("")
	t.AppendHeader(table.Row{"Bowler", "O", "M", "R", "W", "ECO"})
	for i, bowl := range []models.MiniscoreBowler{ms.BowlerStriker, ms.BowlerNonStriker} {
		if bowl.Name == "" {
			continue
		}
		name := bowl.Name
		if i == 0 {
			name += " *"
		}
		t.AppendRow(table.Row{name, formatFloat(bowl.Overs), bowl.Maidens, bowl.Runs, bowl.Wickets, formatFloat(bowl.Economy)})
	}
	return t
}

func battingTable(number int, innings models.InningsRecord) table.Writer {
	t := newTable("Innings " + strconv.Itoa(number))
	t.AppendHeader(table.Row{"Batter", "", "R", "B", "4s", "6s", "SR"})
	for _, bat := range innings.BatsmanDetails {
		t.AppendRow(table.Row{bat.Name, bat.Status, bat.Runs, bat.Balls, bat.Fours, bat.Sixes, bat.StrikeRate})
	}
	if innings.YetToBat != "" {
		t.AppendFooter(table.Row{"Yet to bat", innings.YetToBat})
	}
	return t
}

func bowlingTable(innings models.InningsRecord) table.Writer {
	t := newTable("")
	t.AppendHeader(table.Row{"Bowler", "O", "M", "R", "W", "NB", "WD", "ECO"})
	for _, bowl := range innings.BowlerDetails {
		t.AppendRow(table.Row{bowl.Name, bowl.Overs, bowl.Maidens, bowl.Runs, bowl.Wickets, bowl.NoBalls, bowl.Wides, bowl.Economy})
	}
	return t
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
