package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/aluiziolira/go-cricket-live/models"
)

// MaxInnings is the most innings a match can have.
const MaxInnings = 4

var (
	rowSelector     = cascadia.MustCompile("div.cb-scrd-itms")
	inningsSelector = compileInningsSelectors()
)

// yetToBatLabels mark the row listing batsmen who have not batted.
var yetToBatLabels = []string{"Yet to Bat", "Did not Bat"}

func compileInningsSelectors() [MaxInnings + 1]cascadia.Selector {
	var sels [MaxInnings + 1]cascadia.Selector
	for n := 1; n <= MaxInnings; n++ {
		sels[n] = cascadia.MustCompile(fmt.Sprintf(`div[id="innings_%d"]`, n))
	}
	return sels
}

// ParseScorecard returns one InningsRecord per innings container present on
// a scorecard page, in ascending innings order. Absent innings are skipped,
// so the result has between 0 and MaxInnings entries. YetToBat is left
// empty; see ParseYetToBat.
func ParseScorecard(html string) []models.InningsRecord {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	return Scorecard(doc.Selection)
}

// Scorecard is ParseScorecard over an already parsed tree.
func Scorecard(root *goquery.Selection) []models.InningsRecord {
	var innings []models.InningsRecord
	for n := 1; n <= MaxInnings; n++ {
		container, ok := FindInnings(root, n)
		if !ok {
			continue
		}
		rec := ExtractInnings(container)
		rec.Number = n
		innings = append(innings, rec)
	}
	return innings
}

// ParseScorecardPage parses a scorecard page once and returns its innings
// with YetToBat filled in.
func ParseScorecardPage(html string) []models.InningsRecord {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	innings := Scorecard(doc.Selection)
	for i, line := range YetToBat(doc.Selection) {
		innings[i].YetToBat = line
	}
	return innings
}

// FindInnings returns the container of innings n (1 to MaxInnings).
func FindInnings(root *goquery.Selection, n int) (*goquery.Selection, bool) {
	if n < 1 || n > MaxInnings {
		return nil, false
	}
	container := root.FindMatcher(inningsSelector[n]).First()
	if container.Length() == 0 {
		return nil, false
	}
	return container, true
}

// ExtractInnings classifies the rows of an innings container by their
// number of child elements and maps them onto batting and bowling records.
// Rows of any other shape (headers, extras, totals) are ignored.
func ExtractInnings(container *goquery.Selection) models.InningsRecord {
	var rec models.InningsRecord
	container.FindMatcher(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Children()
		switch cells.Length() {
		case batsmanRowSignature():
			rec.BatsmanDetails = append(rec.BatsmanDetails, extractRow(cells, batsmanFields))
		case bowlerRowSignature():
			rec.BowlerDetails = append(rec.BowlerDetails, extractRow(cells, bowlerFields))
		}
	})
	return rec
}

// ParseYetToBat returns the "Yet to Bat" line of every innings present on a
// scorecard page, aligned with the result of ParseScorecard. Innings without
// such a line contribute an empty string.
func ParseYetToBat(html string) []string {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	return YetToBat(doc.Selection)
}

// YetToBat is ParseYetToBat over an already parsed tree.
func YetToBat(root *goquery.Selection) []string {
	var lines []string
	for n := 1; n <= MaxInnings; n++ {
		container, ok := FindInnings(root, n)
		if !ok {
			continue
		}
		lines = append(lines, yetToBat(container))
	}
	return lines
}

func yetToBat(container *goquery.Selection) string {
	var line string
	container.FindMatcher(rowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Children()
		if cells.Length() < 2 {
			return true
		}
		label := strings.TrimSpace(cells.First().Text())
		for _, l := range yetToBatLabels {
			if strings.EqualFold(label, l) {
				line = strings.TrimSpace(cells.Last().Text())
				return false
			}
		}
		return true
	})
	return line
}
