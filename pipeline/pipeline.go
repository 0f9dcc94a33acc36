package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-cricket-live/config"
	"github.com/aluiziolira/go-cricket-live/models"
	"github.com/aluiziolira/go-cricket-live/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrPipelineCloseTimeout is returned when workers do not drain in time.
	ErrPipelineCloseTimeout = errors.New("pipeline: close timed out")
)

// drainTimeout bounds how long Close waits for pending writes.
var drainTimeout = 10 * time.Second

// OutputWriter defines the interface for snapshot output.
type OutputWriter interface {
	Write(snapshots []*models.Snapshot) error
	Close() error
	Validate() error
}

// Pipeline validates, de-duplicates and writes match snapshots in batches.
type Pipeline struct {
	ctx        context.Context
	writer     OutputWriter
	snapshotCh chan *models.Snapshot
	batchSize  int

	wg sync.WaitGroup

	// last fingerprint recorded per match id
	seen   *lru.Cache[string, uint64]
	seenMu sync.Mutex

	metrics metrics

	mu     sync.Mutex // guards closed/err
	closed bool
	err    error

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline sized from cfg.
func NewPipeline(ctx context.Context, writer OutputWriter, cfg *config.Config) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}

	bufferSize := cfg.PipelineBufferSize
	if bufferSize <= 0 {
		bufferSize = 64
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	dedupeSize := cfg.DedupeMaxSize
	if dedupeSize <= 0 {
		dedupeSize = 256
	}

	// lru.New only fails for non-positive sizes.
	seen, _ := lru.New[string, uint64](dedupeSize)

	return &Pipeline{
		ctx:        ctx,
		writer:     writer,
		snapshotCh: make(chan *models.Snapshot, bufferSize),
		batchSize:  batchSize,
		seen:       seen,
		metrics:    newMetrics(),
		shutdown:   make(chan struct{}),
	}
}

// Start launches worker goroutines.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues snapshots for downstream processing.
func (p *Pipeline) Process(snapshots ...*models.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	closed, err := p.state()
	if err != nil {
		return err
	}
	if closed {
		return ErrPipelineClosed
	}

	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		if err := p.enqueue(snapshot); err != nil {
			return err
		}
	}
	return nil
}

// Record offers a single snapshot; it satisfies the app recorder interface.
func (p *Pipeline) Record(snapshot *models.Snapshot) error {
	return p.Process(snapshot)
}

// Close stops accepting snapshots and waits up to drainTimeout for the
// workers to flush what is pending.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
	}
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.snapshotCh)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return p.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrPipelineCloseTimeout, drainTimeout)
	}
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics := p.GetMetrics()
				processed := metrics["processed_snapshots"].(int64)
				validation := metrics["validation_errors"].(map[string]int)
				slog.Info("pipeline progress",
					slog.Int64("processed", processed),
					slog.Int("invalid", validation["invalid_record"]),
					slog.Int("duplicates", validation["duplicate_snapshot"]),
				)
			case <-p.shutdown:
				return
			case <-p.ctx.Done():
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]*models.Snapshot, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for snapshot := range p.snapshotCh {
		prepared := p.prepare(snapshot)
		if prepared == nil {
			continue
		}
		batch = append(batch, prepared)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				p.setErr(fmt.Errorf("write batch: %w", err))
				return
			}
		}
	}

	if err := flush(); err != nil {
		p.setErr(fmt.Errorf("write batch: %w", err))
	}
}

func (p *Pipeline) prepare(snapshot *models.Snapshot) *models.Snapshot {
	if err := parser.ValidateSnapshot(snapshot); err != nil {
		p.metrics.addValidation("invalid_record")
		slog.Debug("snapshot rejected", slog.String("match_id", snapshot.MatchID), slog.Any("error", err))
		return nil
	}

	sum, err := fingerprint(snapshot)
	if err != nil {
		p.metrics.addValidation("invalid_record")
		return nil
	}

	p.seenMu.Lock()
	if last, ok := p.seen.Get(snapshot.MatchID); ok && last == sum {
		p.seenMu.Unlock()
		p.metrics.addValidation("duplicate_snapshot")
		return nil
	}
	p.seen.Add(snapshot.MatchID, sum)
	p.seenMu.Unlock()

	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now().UTC()
	}

	p.metrics.incrementProcessed()
	return snapshot
}

// fingerprint hashes the parts of a snapshot that change during play.
func fingerprint(snapshot *models.Snapshot) (uint64, error) {
	payload, err := json.Marshal(struct {
		Status  string                 `json:"status"`
		Innings []models.InningsRecord `json:"innings"`
	}{snapshot.Status, snapshot.Innings})
	if err != nil {
		return 0, fmt.Errorf("fingerprint snapshot: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return h.Sum64(), nil
}

func (p *Pipeline) enqueue(snapshot *models.Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.snapshotCh <- snapshot:
		return nil
	}
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return
	}
	p.err = err
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.snapshotCh)
	})
}

func (p *Pipeline) state() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed, p.err
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_snapshots": m.processed,
		"validation_errors":   copyValidation,
	}
}
