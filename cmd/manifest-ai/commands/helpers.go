package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/cache"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
	"github.com/Atarvano/ManifestAi/internal/llm"
	"github.com/Atarvano/ManifestAi/internal/pipeline"
	"github.com/Atarvano/ManifestAi/internal/sequence"
	"github.com/Atarvano/ManifestAi/internal/storage"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openLedger opens and migrates the run ledger. A nil repository means
// the ledger is disabled.
func openLedger(ctx context.Context) (*storage.RunRepository, *sql.DB, error) {
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return nil, nil, nil
	}
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return storage.NewRunRepository(db), db, nil
}

// service wires a pipeline service for model. The returned cleanup closes
// the cache and ledger connections.
func service(ctx context.Context, model string) (*pipeline.Service, func(), error) {
	router, err := llm.NewRouterFromConfig(ctx, cfg.LLM, model, logger)
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	enrichOpts := []hscode.Option{hscode.WithDelay(cfg.Enrichment.Delay)}

	hsCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		logger.Warn().Err(err).Msg("hs code cache unavailable, continuing without it")
	} else if hsCache != nil {
		closers = append(closers, func() { hsCache.Close() })
		enrichOpts = append(enrichOpts, hscode.WithCache(hsCache, cfg.Cache.TTL))
	}

	pcfg := pipeline.Config{
		Columns:       cfg.Normalize.Columns,
		UploadDir:     cfg.Upload.Dir,
		Numberer:      sequence.Numberer{},
		EnrichOptions: enrichOpts,
		Logger:        logger,
	}

	ledger, db, err := openLedger(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("run ledger unavailable, runs will not be recorded")
	} else if ledger != nil {
		closers = append(closers, func() { db.Close() })
		pcfg.Ledger = ledger
	}

	return pipeline.NewService(router, pcfg), cleanup, nil
}

// watch renders pipeline events until eventCh is closed.
func watch(eventCh <-chan domain.StreamEvent) {
	activity := ui.NewActivity("Starting")
	defer activity.Done()

	for event := range eventCh {
		switch event.Type {
		case domain.EventStage:
			activity.Step(event.Payload)
			if ui.Verbose() {
				activity.Print(func() { ui.Info("%s", event.Payload) })
			}
		case domain.EventProgress:
			activity.Count("HS codes", event.Current, event.Total)
		case domain.EventWarning:
			activity.Print(func() { ui.Warning("%s", event.Payload) })
		case domain.EventComplete, domain.EventError:
			activity.Done()
		}
	}
}

// describe renders err for the terminal. With --verbose the full chain is
// kept; otherwise the outermost message, plus the per-provider reasons
// when every provider failed.
func describe(err error) error {
	if verbose {
		return err
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		// Each provider's own failure is what the user can act on.
		if de.Type == domain.ErrorTypeAllProvidersFailed && de.Err != nil {
			return fmt.Errorf("%s (%s): %v", de.Message, de.Type, de.Err)
		}
		return fmt.Errorf("%s (%s)", de.Message, de.Type)
	}
	return err
}
