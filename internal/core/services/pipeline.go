package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-harvest/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineDriver = (*Pipeline)(nil)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithConcurrency sets the fetch concurrency for runs that don't set one.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m driven.MetricsRecorder) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// Pipeline drives runs through listing, fetching, converting and indexing.
type Pipeline struct {
	factory     driven.SourceFactory
	index       driven.IndexWriter
	staging     driven.StagingArea
	metrics     driven.MetricsRecorder
	concurrency int
	now         func() time.Time

	// Status tracking
	mu     sync.RWMutex
	active map[string]*driving.PipelineStatus
}

// NewPipeline creates a pipeline writing to index.
// The staging area holds listings for resumed runs.
func NewPipeline(
	factory driven.SourceFactory,
	index driven.IndexWriter,
	staging driven.StagingArea,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		factory:     factory,
		index:       index,
		staging:     staging,
		concurrency: 1,
		now:         time.Now,
		active:      make(map[string]*driving.PipelineStatus),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// fetched pairs a reference with its fetch outcome.
type fetched struct {
	ref domain.DocumentReference
	raw *domain.RawDocument
	err error
}

// Run executes one run. Only a failed listing, a missing resume listing or
// context cancellation return an error; record failures are reported in the
// result and skipped.
func (p *Pipeline) Run(ctx context.Context, cfg domain.RunConfig) (*domain.BatchResult, error) {
	name := cfg.RunName()

	if err := p.claim(name); err != nil {
		return nil, err
	}
	defer p.release(name)

	source, err := p.factory.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	defer source.Close()

	result := &domain.BatchResult{
		RunID:      uuid.NewString(),
		Name:       name,
		Source:     cfg.Source,
		Collection: cfg.Collection,
		StartedAt:  p.now(),
	}

	logger.Section("Run " + name)
	logger.Info("Run %s (%s/%s -> %s)", result.RunID, cfg.Source, cfg.DocType, cfg.Collection)

	// 1. Listing
	p.enter(name, domain.StageListing, 0)
	refs, err := p.listing(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	result.Listed = len(refs)
	logger.Info("Listed %d documents", len(refs))

	// 2. Fetching
	p.enter(name, domain.StageFetching, len(refs))
	docs, err := p.fetchAll(ctx, source, name, refs, p.concurrencyFor(cfg))
	if err != nil {
		return nil, err
	}
	var raws []*domain.RawDocument
	for _, d := range docs {
		if d.err != nil {
			p.fail(result, d.ref.Identifier, domain.StageFetching, d.err)
			continue
		}
		raws = append(raws, d.raw)
	}
	result.Fetched = len(raws)

	// 3. Converting
	p.enter(name, domain.StageConverting, len(raws))
	var records []*domain.NormalizedRecord
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := source.Convert(ctx, raw, cfg.IDField)
		p.step(name, domain.StageConverting, err)
		if err != nil {
			p.fail(result, raw.Identifier, domain.StageConverting, err)
			continue
		}
		if cfg.DiscardStaged && raw.LocalPath != "" {
			if err := p.staging.Remove(raw.LocalPath); err != nil {
				logger.Warn("Failed to remove staged %s: %v", raw.LocalPath, err)
			}
		}
		records = append(records, rec)
	}
	result.Converted = len(records)

	// 4. Indexing
	p.enter(name, domain.StageIndexing, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := p.index.Upsert(ctx, cfg.Collection, rec.Identifier, *rec)
		p.step(name, domain.StageIndexing, err)
		if err != nil {
			var ie *domain.IndexError
			if !errors.As(err, &ie) {
				err = &domain.IndexError{Key: rec.Identifier, Err: err}
			}
			p.fail(result, rec.Identifier, domain.StageIndexing, err)
			continue
		}
		result.Indexed++
		result.IndexedKeys = append(result.IndexedKeys, rec.Identifier)
	}

	p.enter(name, domain.StageDone, 0)
	result.FinishedAt = p.now()
	if p.metrics != nil {
		p.metrics.ObserveRun(result)
	}

	logger.Info("Run %s complete: %d listed, %d indexed, %d failed in %s",
		name, result.Listed, result.Indexed, len(result.Failures), result.Duration())
	return result, nil
}

// RunAll executes runs in order. A fatal error in one run does not stop
// the others; fatal errors are joined.
func (p *Pipeline) RunAll(ctx context.Context, cfgs []domain.RunConfig) ([]*domain.BatchResult, error) {
	var (
		results []*domain.BatchResult
		errs    []error
	)
	for _, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := p.Run(ctx, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("run %s: %w", cfg.RunName(), err))
			continue
		}
		results = append(results, result)
	}

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}

// List runs the listing stage only and saves the references.
// It shares the run's slot with Run so the two cannot overwrite the
// same saved listing concurrently.
func (p *Pipeline) List(ctx context.Context, cfg domain.RunConfig) ([]domain.DocumentReference, error) {
	name := cfg.RunName()

	if err := p.claim(name); err != nil {
		return nil, err
	}
	defer p.release(name)

	source, err := p.factory.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	defer source.Close()

	cfg.Resume = false
	return p.listing(ctx, source, cfg)
}

// Status returns progress for a run by name.
func (p *Pipeline) Status(_ context.Context, name string) (*driving.PipelineStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if status, ok := p.active[name]; ok {
		// Return a copy to avoid race conditions
		copied := *status
		return &copied, nil
	}

	// Not running - return idle status
	return &driving.PipelineStatus{
		Name:    name,
		Running: false,
		Stage:   domain.StageDone,
	}, nil
}

// listing returns saved references for resumed runs, or queries the source
// and saves what it returns.
func (p *Pipeline) listing(ctx context.Context, source driven.Source, cfg domain.RunConfig) ([]domain.DocumentReference, error) {
	if cfg.Resume {
		refs, err := p.staging.LoadReferences(cfg.RunName())
		if err != nil {
			return nil, fmt.Errorf("resume %s: %w", cfg.RunName(), err)
		}
		logger.Debug("Resuming from %d saved references", len(refs))
		return refs, nil
	}

	refs, err := source.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.staging.SaveReferences(cfg.RunName(), refs); err != nil {
		logger.Warn("Failed to save references for %s: %v", cfg.RunName(), err)
	}
	return refs, nil
}

// fetchAll fetches references with bounded parallelism.
// Outcomes keep listing order.
func (p *Pipeline) fetchAll(
	ctx context.Context,
	source driven.Source,
	name string,
	refs []domain.DocumentReference,
	limit int,
) ([]fetched, error) {
	out := make([]fetched, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Debug("Fetching: %s", ref.SourceURL)
			raw, err := source.Fetch(gctx, ref)
			out[i] = fetched{ref: ref, raw: raw, err: err}
			p.step(name, domain.StageFetching, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) concurrencyFor(cfg domain.RunConfig) int {
	n := cfg.Concurrency
	if n < 1 {
		n = p.concurrency
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Pipeline) fail(result *domain.BatchResult, id string, stage domain.Stage, err error) {
	logger.Debug("Skipping %s at %s: %v", id, stage, err)
	result.Failures = append(result.Failures, domain.RecordFailure{
		Identifier: id,
		Stage:      stage,
		Err:        err,
	})
}

// claim registers a run as active.
func (p *Pipeline) claim(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrRunInProgress, name)
	}
	p.active[name] = &driving.PipelineStatus{Name: name, Running: true, Stage: domain.StageListing}
	return nil
}

func (p *Pipeline) release(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, name)
}

func (p *Pipeline) enter(name string, stage domain.Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status, ok := p.active[name]; ok {
		status.Stage = stage
		status.Total = total
		status.Processed = 0
	}
}

// step counts one record leaving a stage.
func (p *Pipeline) step(name string, stage domain.Stage, err error) {
	p.mu.Lock()
	if status, ok := p.active[name]; ok {
		status.Processed++
		if err != nil {
			status.ErrorCount++
		}
	}
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordOutcome(name, stage, err == nil)
	}
}
