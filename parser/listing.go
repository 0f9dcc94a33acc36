// Package parser extracts live matches and scorecards from the site's HTML
// and decodes the commentary feed.
//
// Every HTML entry point takes the raw page text and never fails: markup
// that does not look as expected yields an empty or partial result.
package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/aluiziolira/go-cricket-live/models"
)

const (
	menuHeaderText = "MATCHES"
	liveStatus     = "Live"
)

var (
	matchMenuSelector = cascadia.MustCompile("nav.cb-mat-mnu")
	anchorSelector    = cascadia.MustCompile("a")
)

// ParseLiveMatches returns the live matches linked from the match menu of a
// listing page, in document order. Duplicates are kept.
func ParseLiveMatches(html string) []models.LiveMatchRef {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	return LiveMatches(doc.Selection)
}

// LiveMatches is ParseLiveMatches over an already parsed tree.
func LiveMatches(root *goquery.Selection) []models.LiveMatchRef {
	nav := root.FindMatcher(matchMenuSelector).First()
	if nav.Length() == 0 {
		return nil
	}

	var refs []models.LiveMatchRef
	nav.FindMatcher(anchorSelector).Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if text == "" || text == menuHeaderText {
			return
		}
		if !isLive(text) {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		id, ok := matchIDFromHref(href)
		if !ok {
			slog.Debug("live match link without match id", slog.String("text", text), slog.String("href", href))
			return
		}
		refs = append(refs, models.LiveMatchRef{ShortName: text, MatchID: id})
	})
	return refs
}

// isLive reports whether the hyphen separated status suffix of a menu
// entry, e.g. "KENT vs GLAM - Live", is exactly "Live". Team names may
// themselves contain hyphens, so the suffix is whatever follows the last one.
func isLive(text string) bool {
	idx := strings.LastIndex(text, "-")
	if idx < 0 {
		return false
	}
	return strings.TrimSpace(text[idx+1:]) == liveStatus
}

// matchIDFromHref takes the third path segment of a match link such as
// "/live-cricket-scores/33238/kent-vs-glam". When that segment is not
// numeric the first numeric segment after it is used.
func matchIDFromHref(href string) (string, bool) {
	segments := strings.Split(href, "/")
	if len(segments) < 3 {
		return "", false
	}
	for _, seg := range segments[2:] {
		if isNumeric(seg) {
			return seg, true
		}
	}
	return "", false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func newDocument(html string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("parse html document", slog.Any("error", err))
		return nil, false
	}
	return doc, true
}
