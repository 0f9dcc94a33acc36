package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-cricket-live/models"
)

// field maps one positional cell of a scorecard row onto a record.
type field[T any] struct {
	name    string
	extract func(*goquery.Selection) (string, error)
	set     func(*T, string)
}

// batsmanFields and bowlerFields are the positional layouts of the two row
// kinds. A row is recognised by having exactly as many child elements as
// its layout has fields, so remapping a changed page is a table edit.
var batsmanFields = []field[models.BatsmanRecord]{
	{"name", visibleText, func(r *models.BatsmanRecord, v string) { r.Name = v }},
	{"status", visibleText, func(r *models.BatsmanRecord, v string) { r.Status = v }},
	{"runs", innerHTML, func(r *models.BatsmanRecord, v string) { r.Runs = v }},
	{"balls", innerHTML, func(r *models.BatsmanRecord, v string) { r.Balls = v }},
	{"fours", innerHTML, func(r *models.BatsmanRecord, v string) { r.Fours = v }},
	{"sixes", innerHTML, func(r *models.BatsmanRecord, v string) { r.Sixes = v }},
	{"strike_rate", innerHTML, func(r *models.BatsmanRecord, v string) { r.StrikeRate = v }},
}

var bowlerFields = []field[models.BowlerRecord]{
	{"name", visibleText, func(r *models.BowlerRecord, v string) { r.Name = v }},
	{"overs", innerHTML, func(r *models.BowlerRecord, v string) { r.Overs = v }},
	{"maidens", innerHTML, func(r *models.BowlerRecord, v string) { r.Maidens = v }},
	{"runs", innerHTML, func(r *models.BowlerRecord, v string) { r.Runs = v }},
	{"wickets", innerHTML, func(r *models.BowlerRecord, v string) { r.Wickets = v }},
	{"no_balls", innerHTML, func(r *models.BowlerRecord, v string) { r.NoBalls = v }},
	{"wides", innerHTML, func(r *models.BowlerRecord, v string) { r.Wides = v }},
	{"economy", innerHTML, func(r *models.BowlerRecord, v string) { r.Economy = v }},
}

// Row signatures: the child element count of a batting and a bowling row.
func batsmanRowSignature() int { return len(batsmanFields) }

func bowlerRowSignature() int { return len(bowlerFields) }

func visibleText(s *goquery.Selection) (string, error) {
	return strings.TrimSpace(s.Text()), nil
}

func innerHTML(s *goquery.Selection) (string, error) {
	h, err := s.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(h), nil
}

// extractRow fills a record from the cells of a row. A cell that is missing
// or unreadable leaves its field empty; the row itself is always returned.
func extractRow[T any](cells *goquery.Selection, fields []field[T]) T {
	var rec T
	n := cells.Length()
	for i, f := range fields {
		if i >= n {
			slog.Warn("scorecard row missing cell",
				slog.String("field", f.name),
				slog.Int("position", i),
				slog.Int("cells", n),
			)
			continue
		}
		v, err := f.extract(cells.Eq(i))
		if err != nil {
			slog.Warn("scorecard cell unreadable",
				slog.String("field", f.name),
				slog.Int("position", i),
				slog.Any("error", err),
			)
			continue
		}
		f.set(&rec, v)
	}
	return rec
}
