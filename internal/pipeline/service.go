// Package pipeline runs the normalize and customs workflows end to end and
// reports their progress as a stream of events.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
	"github.com/Atarvano/ManifestAi/internal/sequence"
	"github.com/Atarvano/ManifestAi/internal/storage"
)

// Pipeline names, as recorded in the run ledger and metrics.
const (
	PipelineNormalize = "normalize"
	PipelineCustoms   = "customs"
)

// Stage names carried by stage events.
const (
	StageStaging  = "upload"
	StageExtract  = "extract"
	StagePrompt   = "prompt"
	StageModel    = "model"
	StageParse    = "parse"
	StageSequence = "sequence"
	StageEnrich   = "enrich"
	StageWorkbook = "workbook"
	StageBuild    = "build"
	StageExport   = "export"
)

// Router sends prompts to AI providers with fallback.
type Router interface {
	Call(ctx context.Context, primary, prompt string, opts domain.CompletionOptions) (string, error)
	For(primary string) domain.Completer
}

// Ledger records pipeline runs.
type Ledger interface {
	Create(ctx context.Context, run *storage.Run) error
	Finish(ctx context.Context, run *storage.Run) error
}

// Config holds the collaborators and defaults of a Service.
type Config struct {
	// Columns is the canonical column list sent to the model. Empty means
	// domain.DefaultColumns.
	Columns   []string
	UploadDir string
	Numberer  sequence.Numberer

	// EnrichOptions configure every enricher the service creates, e.g.
	// delay and cache. The strategy is set per request.
	EnrichOptions []hscode.Option

	Ledger Ledger
	Logger *observability.Logger
}

// Service orchestrates the manifest pipelines
type Service struct {
	router Router
	cfg    Config
	logger *observability.Logger
}

// NewService creates a new pipeline service
func NewService(router Router, cfg Config) *Service {
	return &Service{
		router: router,
		cfg:    cfg,
		logger: observability.OrNop(cfg.Logger).WithOperation("pipeline"),
	}
}

// enricher builds an HS enricher whose lookups go through the run's model,
// with progress reported as events.
func (s *Service) enricher(r *run, strategy string, eventCh chan<- domain.StreamEvent) *hscode.Enricher {
	opts := append([]hscode.Option{}, s.cfg.EnrichOptions...)
	if strategy != "" {
		opts = append(opts, hscode.WithStrategy(strategy))
	}
	opts = append(opts,
		hscode.WithLogger(r.logger),
		hscode.WithProgress(func(done, total int) {
			s.emitEvent(eventCh, domain.StreamEvent{
				Type:      domain.EventProgress,
				Stage:     StageEnrich,
				Current:   done,
				Total:     total,
				Timestamp: time.Now(),
			})
		}),
	)
	return hscode.NewEnricher(s.router.For(r.Model), opts...)
}

// run tracks one pipeline execution in the ledger and metrics.
type run struct {
	*storage.Run
	started time.Time
	logger  *observability.Logger
}

func (s *Service) begin(ctx context.Context, pipeline, filename, model string, eventCh chan<- domain.StreamEvent) (context.Context, *run) {
	r := &run{
		Run:     &storage.Run{ID: uuid.New(), Pipeline: pipeline, Filename: filename, Model: model},
		started: time.Now(),
	}
	if s.cfg.Ledger != nil {
		if err := s.cfg.Ledger.Create(ctx, r.Run); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record run start")
		}
	}
	ctx = observability.ContextWithRunID(ctx, r.ID.String())
	r.logger = s.logger.WithContext(ctx)

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting %s of %s", pipeline, filename),
		Timestamp: time.Now(),
	})
	r.logger.Info().Str("pipeline", pipeline).Str("filename", filename).Str("model", model).Msg("pipeline started")
	return ctx, r
}

func (s *Service) succeed(ctx context.Context, r *run, eventCh chan<- domain.StreamEvent, payload string) {
	r.Status = storage.StatusSucceeded
	s.end(ctx, r)

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	r.logger.Info().
		Str("pipeline", r.Pipeline).
		Int("items", r.ItemCount).
		Dur("duration", time.Since(r.started)).
		Msg("pipeline complete")
}

// fail records err against the run and returns it unchanged.
func (s *Service) fail(ctx context.Context, r *run, eventCh chan<- domain.StreamEvent, err error) error {
	r.Status = storage.StatusFailed
	r.Error = err.Error()
	s.end(ctx, r)

	s.emitError(eventCh, err)
	r.logger.Error().Str("pipeline", r.Pipeline).Str("kind", string(domain.KindOf(err))).Err(err).Msg("pipeline failed")
	return err
}

func (s *Service) end(ctx context.Context, r *run) {
	metrics.RecordPipelineRun(r.Pipeline, r.Status, time.Since(r.started))
	if s.cfg.Ledger == nil {
		return
	}
	// The ledger entry is written even when the caller's context ended.
	if err := s.cfg.Ledger.Finish(context.WithoutCancel(ctx), r.Run); err != nil {
		r.logger.Warn().Err(err).Msg("failed to record run result")
	}
}

func (s *Service) stage(eventCh chan<- domain.StreamEvent, stage, payload string) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStage,
		Stage:     stage,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

func (s *Service) warn(eventCh chan<- domain.StreamEvent, stage, payload string) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventWarning,
		Stage:     stage,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Debug().Str("type", string(event.Type)).Msg("event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
