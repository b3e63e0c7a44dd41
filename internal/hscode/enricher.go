package hscode

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Atarvano/ManifestAi/internal/cache"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
	"github.com/Atarvano/ManifestAi/internal/prompt"
)

// Strategy names.
const (
	Sequential = "sequential"
	Batch      = "batch"
)

// CachePrefix is the first key segment of every cached classification.
const CachePrefix = "hs"

const cacheVersion = "v1"

var jsonArray = regexp.MustCompile(`\[[\s\S]*\]`)

// Target is one code to fill. Code points at the field that receives the
// classification.
type Target struct {
	Description string
	Code        *string
}

// ProgressFunc is called after each target has been handled.
type ProgressFunc func(done, total int)

// Enricher fills missing HS codes through a Completer.
type Enricher struct {
	completer domain.Completer
	strategy  string
	delay     time.Duration
	cache     cache.Client
	cacheTTL  time.Duration
	progress  ProgressFunc
	logger    *observability.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithStrategy selects Sequential or Batch.
func WithStrategy(s string) Option {
	return func(e *Enricher) { e.strategy = s }
}

// WithDelay sets the pause between consecutive sequential lookups.
func WithDelay(d time.Duration) Option {
	return func(e *Enricher) { e.delay = d }
}

// WithCache stores classifications in c for ttl.
func WithCache(c cache.Client, ttl time.Duration) Option {
	return func(e *Enricher) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Enricher) { e.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(e *Enricher) { e.logger = l }
}

// NewEnricher creates an enricher. The default strategy is sequential with
// no delay.
func NewEnricher(completer domain.Completer, opts ...Option) *Enricher {
	e := &Enricher{
		completer: completer,
		strategy:  Sequential,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = observability.OrNop(e.logger).WithOperation("hs_enrichment")
	return e
}

// Enrich fills the code of every target lacking a valid one. Individual
// lookup failures leave the code untouched and are only counted. The
// returned error is non-nil only when ctx ends before all targets ran.
func (e *Enricher) Enrich(ctx context.Context, targets []Target) (domain.EnrichmentStats, error) {
	run := &enrichRun{Enricher: e, total: len(targets)}

	var pending []int
	for i, t := range targets {
		switch {
		case len(*t.Code) >= MinDigits:
			run.stats.ValidationsRun++
			run.finish(metrics.LookupSkipped)
		case strings.TrimSpace(t.Description) == "":
			run.finish(metrics.LookupSkipped)
		default:
			pending = append(pending, i)
		}
	}

	pending = run.fromCache(ctx, targets, pending)

	e.logger.Info().
		Str("strategy", e.strategy).
		Int("items", len(targets)).
		Int("lookups", len(pending)).
		Msg("starting hs code enrichment")

	var err error
	if e.strategy == Batch && len(pending) > 0 {
		err = run.batch(ctx, targets, pending)
	} else {
		err = run.sequential(ctx, targets, pending)
	}

	e.logger.Info().
		Int("added", run.stats.HSCodesAdded).
		Int("validated", run.stats.ValidationsRun).
		Int("failed", run.stats.Failed).
		Msg("hs code enrichment complete")

	return run.stats, err
}

// EnrichLineItems fills missing codes of items in place and returns the
// same slice.
func (e *Enricher) EnrichLineItems(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, domain.EnrichmentStats, error) {
	targets := make([]Target, len(items))
	for i := range items {
		targets[i] = Target{Description: items[i].Description, Code: &items[i].HSCode}
	}
	stats, err := e.Enrich(ctx, targets)
	return items, stats, err
}

// Lookup classifies a single description. It returns "" with an error
// when the provider fails or its reply holds no usable code.
func (e *Enricher) Lookup(ctx context.Context, description string) (string, error) {
	text, err := e.completer.Complete(ctx, prompt.HSCode(description), domain.CompletionOptions{
		Fast:        true,
		Temperature: domain.Temperature(0),
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}

	code := Normalize(text)
	if code == "" {
		return "", domain.MalformedResponseError(fmt.Sprintf("no hs code in reply %q", excerpt(text, 80)))
	}
	return code, nil
}

type enrichRun struct {
	*Enricher
	stats domain.EnrichmentStats
	done  int
	total int
}

func (r *enrichRun) finish(outcome string) {
	metrics.RecordLookup(outcome)
	switch outcome {
	case metrics.LookupAdded, metrics.LookupCached:
		r.stats.HSCodesAdded++
	case metrics.LookupFailed:
		r.stats.Failed++
	}
	r.done++
	if r.progress != nil {
		r.progress(r.done, r.total)
	}
}

func (r *enrichRun) fromCache(ctx context.Context, targets []Target, pending []int) []int {
	if r.cache == nil {
		return pending
	}

	var rest []int
	for _, i := range pending {
		val, err := r.cache.Get(ctx, cacheKey(targets[i].Description))
		if err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				r.logger.Warn().Err(err).Msg("hs cache get failed")
			}
			rest = append(rest, i)
			continue
		}
		code := Normalize(string(val))
		if code == "" {
			rest = append(rest, i)
			continue
		}
		*targets[i].Code = code
		r.finish(metrics.LookupCached)
	}
	return rest
}

func (r *enrichRun) store(ctx context.Context, description, code string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(description), []byte(code), r.cacheTTL); err != nil {
		r.logger.Warn().Err(err).Msg("hs cache set failed")
	}
}

func (r *enrichRun) sequential(ctx context.Context, targets []Target, pending []int) error {
	for n, i := range pending {
		if n > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return err
			}
		}

		t := targets[i]
		code, err := r.Lookup(ctx, t.Description)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.logger.Warn().Int("item", i+1).Int("total", r.total).Err(err).Msg("hs code lookup failed")
			r.finish(metrics.LookupFailed)
			continue
		}

		*t.Code = code
		r.store(ctx, t.Description, code)
		r.logger.Info().Int("item", i+1).Int("total", r.total).Str("hs_code", code).Msg("hs code added")
		r.finish(metrics.LookupAdded)
	}
	return nil
}

func (r *enrichRun) batch(ctx context.Context, targets []Target, pending []int) error {
	descriptions := make([]string, len(pending))
	for n, i := range pending {
		descriptions[n] = targets[i].Description
	}

	text, err := r.completer.Complete(ctx, prompt.HSCodeBatch(descriptions), domain.CompletionOptions{
		Temperature: domain.Temperature(0.1),
		MaxTokens:   len(pending)*100 + 500,
	})
	if err == nil {
		var codes map[int]string
		codes, err = parseBatch(text)
		if err == nil {
			r.logger.Info().Int("parsed", len(codes)).Int("requested", len(pending)).Msg("batch hs codes parsed")
			for n, i := range pending {
				code := Normalize(codes[n+1])
				if code == "" {
					r.finish(metrics.LookupFailed)
					continue
				}
				*targets[i].Code = code
				r.store(ctx, targets[i].Description, code)
				r.finish(metrics.LookupAdded)
			}
			return nil
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	r.logger.Warn().Err(err).Msg("batch hs lookup failed, falling back to sequential")
	return r.sequential(ctx, targets, pending)
}

// parseBatch reads a reply of the form [{"index":1,"hs_code":"..."}] into
// codes keyed by index.
func parseBatch(text string) (map[int]string, error) {
	raw := jsonArray.FindString(text)
	if raw == "" {
		return nil, domain.InvalidJSONError("no JSON array in batch reply: "+excerpt(text, 200), nil)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var entries []any
	if err := dec.Decode(&entries); err != nil {
		return nil, domain.InvalidJSONError("batch reply is not valid JSON", err)
	}

	codes := make(map[int]string, len(entries))
	for n, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("batch entry %d is not an object", n+1), nil)
		}
		idx, ok := obj["index"].(json.Number)
		if !ok {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("batch entry %d has no numeric index", n+1), nil)
		}
		i, err := idx.Int64()
		if err != nil {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("batch entry %d has index %s", n+1, idx), err)
		}
		switch v := obj["hs_code"].(type) {
		case string:
			codes[int(i)] = v
		case json.Number:
			codes[int(i)] = v.String()
		}
	}
	return codes, nil
}

func cacheKey(description string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(description), " "))
	sum := sha256.Sum256([]byte(norm))
	return cache.Key(CachePrefix, cacheVersion, hex.EncodeToString(sum[:16]))
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
