// Package app keeps the set of followed matches in step with the live
// listing and refreshes their scorecards and miniscores on each poll.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aluiziolira/go-cricket-live/models"
	"github.com/aluiziolira/go-cricket-live/parser"
	"github.com/aluiziolira/go-cricket-live/scraper"
)

// Fetcher retrieves raw listing, scorecard and commentary documents.
type Fetcher interface {
	FetchListing(ctx context.Context) ([]byte, error)
	FetchScorecard(ctx context.Context, matchID string) ([]byte, error)
	FetchCommentary(ctx context.Context, matchID string) ([]byte, error)
}

// Recorder receives a snapshot for every successfully refreshed match.
type Recorder interface {
	Record(snapshot *models.Snapshot) error
}

// commentaryLinker is implemented by fetchers that can name the commentary
// URL of a match.
type commentaryLinker interface {
	CommentaryURL(matchID string) string
}

// App owns the current match list.
type App struct {
	fetcher     Fetcher
	matchID     int
	parallelism int
	recorder    Recorder
	metrics     *scraper.Metrics
	now         func() time.Time

	mu      sync.RWMutex
	matches []models.Match
}

// Option configures an App.
type Option func(*App)

// WithMatchID follows a single match instead of every live match.
func WithMatchID(id int) Option {
	return func(a *App) { a.matchID = id }
}

// WithParallelism bounds the number of matches fetched at once.
func WithParallelism(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// WithRecorder sends snapshots of refreshed matches to r.
func WithRecorder(r Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithMetrics reports live match and innings counts to m.
func WithMetrics(m *scraper.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithClock overrides the time source used for UpdatedAt and CapturedAt.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New builds an App around fetcher.
func New(fetcher Fetcher, opts ...Option) *App {
	a := &App{
		fetcher:     fetcher,
		parallelism: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Matches returns a copy of the current match list.
func (a *App) Matches() []models.Match {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Match, len(a.matches))
	copy(out, a.matches)
	return out
}

// ShortNames lists the short names of the current matches in tab order.
func (a *App) ShortNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.matches))
	for _, m := range a.matches {
		names = append(names, m.ShortName)
	}
	return names
}

// Load builds the initial match list. Matches whose commentary cannot be
// fetched are left out; a missing scorecard leaves the scorecard empty.
func (a *App) Load(ctx context.Context) error {
	refs, err := a.liveRefs(ctx)
	if err != nil {
		return err
	}

	loaded := a.fetchAll(ctx, refs, nil)

	matches := make([]models.Match, 0, len(loaded))
	for _, r := range loaded {
		if !r.ok {
			continue
		}
		matches = append(matches, r.match)
	}

	a.mu.Lock()
	a.matches = matches
	a.mu.Unlock()

	a.metrics.SetLiveMatches(len(matches))
	a.record(matches)

	slog.Info("matches loaded",
		slog.Int("live", len(refs)),
		slog.Int("loaded", len(matches)),
	)
	return nil
}

// Refresh brings the match list up to date with the live listing. Matches
// that are no longer live are removed, the rest are refreshed in place and
// newly live matches are appended. A failed listing fetch skips the tick.
func (a *App) Refresh(ctx context.Context) models.PollResult {
	var result models.PollResult

	refs, err := a.liveRefs(ctx)
	if err != nil {
		slog.Warn("listing unavailable, keeping current matches", slog.Any("error", err))
		return result
	}

	a.mu.RLock()
	previous := make([]models.Match, len(a.matches))
	copy(previous, a.matches)
	a.mu.RUnlock()

	live := make(map[string]models.LiveMatchRef, len(refs))
	for _, ref := range refs {
		live[ref.MatchID] = ref
	}

	var (
		kept     []models.LiveMatchRef
		keptPrev []*models.Match
		known    = make(map[string]struct{}, len(previous))
	)
	for i := range previous {
		m := &previous[i]
		known[m.MatchID] = struct{}{}
		ref, ok := live[m.MatchID]
		if !ok {
			result.Removed = append(result.Removed, i)
			continue
		}
		kept = append(kept, ref)
		keptPrev = append(keptPrev, m)
	}

	var fresh []models.LiveMatchRef
	for _, ref := range refs {
		if _, ok := known[ref.MatchID]; !ok {
			fresh = append(fresh, ref)
		}
	}

	updated := a.fetchAll(ctx, kept, keptPrev)
	added := a.fetchAll(ctx, fresh, nil)

	matches := make([]models.Match, 0, len(updated)+len(added))
	var recorded []models.Match
	for _, r := range updated {
		matches = append(matches, r.match)
		if r.ok {
			result.Refreshed++
			recorded = append(recorded, r.match)
		} else {
			result.Failed++
		}
	}
	for _, r := range added {
		if !r.ok {
			result.Failed++
			continue
		}
		matches = append(matches, r.match)
		recorded = append(recorded, r.match)
		result.Added++
	}

	a.mu.Lock()
	a.matches = matches
	a.mu.Unlock()

	sort.Ints(result.Removed)
	a.metrics.SetLiveMatches(len(matches))
	a.record(recorded)

	slog.Debug("refresh complete",
		slog.Int("removed", len(result.Removed)),
		slog.Int("added", result.Added),
		slog.Int("refreshed", result.Refreshed),
		slog.Int("failed", result.Failed),
	)
	return result
}

// liveRefs returns the matches to follow this poll.
func (a *App) liveRefs(ctx context.Context) ([]models.LiveMatchRef, error) {
	if a.matchID != 0 {
		return []models.LiveMatchRef{a.followedRef(ctx)}, nil
	}

	body, err := a.fetcher.FetchListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	return parser.ParseLiveMatches(string(body)), nil
}

// followedRef names the single followed match, preferring the listing's
// short name when the listing can be read and still carries the match.
func (a *App) followedRef(ctx context.Context) models.LiveMatchRef {
	id := strconv.Itoa(a.matchID)
	ref := models.LiveMatchRef{ShortName: "Match " + id, MatchID: id}

	body, err := a.fetcher.FetchListing(ctx)
	if err != nil {
		slog.Debug("listing unavailable for match name", slog.Any("error", err))
		return ref
	}
	for _, live := range parser.ParseLiveMatches(string(body)) {
		if live.MatchID == id {
			ref.ShortName = live.ShortName
			break
		}
	}
	return ref
}

type fetchResult struct {
	match models.Match
	ok    bool
}

// fetchAll fetches every ref concurrently and returns results in ref order.
// When prev is given, prev[i] supplies fallback data for refs[i].
func (a *App) fetchAll(ctx context.Context, refs []models.LiveMatchRef, prev []*models.Match) []fetchResult {
	results := make([]fetchResult, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, ref := range refs {
		var previous *models.Match
		if prev != nil {
			previous = prev[i]
		}
		g.Go(func() error {
			results[i].match, results[i].ok = a.fetchMatch(gctx, ref, previous)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetchMatch fetches the commentary and scorecard of one match. Without a
// previous value the commentary is required. With one, whatever fails to
// fetch keeps its previous value and ok is false.
func (a *App) fetchMatch(ctx context.Context, ref models.LiveMatchRef, prev *models.Match) (models.Match, bool) {
	match := models.Match{
		ShortName: ref.ShortName,
		MatchID:   ref.MatchID,
	}
	if prev != nil {
		match = *prev
		match.ShortName = ref.ShortName
	}
	if linker, ok := a.fetcher.(commentaryLinker); ok {
		match.CommentaryURL = linker.CommentaryURL(ref.MatchID)
	}

	ok := true

	info, err := a.commentary(ctx, ref.MatchID)
	if err != nil {
		slog.Warn("commentary unavailable",
			slog.String("match_id", ref.MatchID),
			slog.String("error_type", scraper.ErrorType(err)),
			slog.Any("error", err),
		)
		if prev == nil {
			return match, false
		}
		ok = false
	} else {
		match.Info = info
	}

	innings, err := a.scorecard(ctx, ref.MatchID)
	if err != nil {
		slog.Warn("scorecard unavailable",
			slog.String("match_id", ref.MatchID),
			slog.String("error_type", scraper.ErrorType(err)),
			slog.Any("error", err),
		)
		if prev != nil {
			ok = false
		}
	} else {
		match.Scorecard = innings
	}

	if ok {
		match.UpdatedAt = a.now()
	}
	return match, ok
}

func (a *App) commentary(ctx context.Context, matchID string) (*models.Commentary, error) {
	body, err := a.fetcher.FetchCommentary(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return parser.ParseCommentary(body)
}

// scorecard parses the innings of a match and fills in who is yet to bat.
func (a *App) scorecard(ctx context.Context, matchID string) ([]models.InningsRecord, error) {
	body, err := a.fetcher.FetchScorecard(ctx, matchID)
	if err != nil {
		return nil, err
	}

	innings := parser.ParseScorecardPage(string(body))
	a.metrics.AddInnings(len(innings))
	return innings, nil
}

func (a *App) record(matches []models.Match) {
	if a.recorder == nil {
		return
	}
	for _, m := range matches {
		snapshot := &models.Snapshot{
			MatchID:    m.MatchID,
			ShortName:  m.ShortName,
			Innings:    m.Scorecard,
			CapturedAt: m.UpdatedAt,
		}
		if m.Info != nil {
			snapshot.Status = m.Info.Miniscore.Status
		}
		if err := a.recorder.Record(snapshot); err != nil {
			slog.Warn("snapshot not recorded",
				slog.String("match_id", m.MatchID),
				slog.Any("error", err),
			)
			continue
		}
		a.metrics.IncSnapshots()
	}
}
