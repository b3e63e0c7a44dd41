package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/parse"
	"github.com/Atarvano/ManifestAi/internal/prompt"
	"github.com/Atarvano/ManifestAi/internal/sequence"
	"github.com/Atarvano/ManifestAi/internal/tabular"
)

// NormalizeRequest is one spreadsheet to normalize.
type NormalizeRequest struct {
	Filename string
	Source   io.Reader

	ModelSource       string
	BLStartNumber     int
	BLMiddleFormat    string
	BLYear            int
	CustomInstruction string

	Enrich   bool
	Strategy string
}

// Normalize converts a manifest spreadsheet into canonical line items:
// extract the first sheet, ask the model to map it onto the column
// schema, validate the reply, sort, assign missing B/L numbers and
// optionally fill HS codes.
func (s *Service) Normalize(ctx context.Context, req NormalizeRequest, eventCh chan<- domain.StreamEvent) (*domain.NormalizeResult, error) {
	ctx, r := s.begin(ctx, PipelineNormalize, req.Filename, req.ModelSource, eventCh)

	s.stage(eventCh, StageStaging, "Staging upload")
	path, cleanup, err := StageUpload(s.cfg.UploadDir, req.Filename, req.Source)
	defer cleanup()
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}

	s.stage(eventCh, StageExtract, "Reading spreadsheet")
	table, sourceRows, err := extractTable(path)
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}

	s.stage(eventCh, StagePrompt, "Building prompt")
	text := prompt.Build(s.cfg.Columns, table, req.CustomInstruction)

	s.stage(eventCh, StageModel, fmt.Sprintf("Sending to %s", req.ModelSource))
	reply, err := s.router.Call(ctx, req.ModelSource, text, domain.CompletionOptions{})
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}

	s.stage(eventCh, StageParse, "Validating model reply")
	items, err := parse.Items(reply)
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}
	r.logger.Info().Int("items", len(items)).Int("source_rows", sourceRows).Msg("model reply parsed")
	if sourceRows > 0 && len(items) != sourceRows {
		r.logger.Warn().Int("items", len(items)).Int("source_rows", sourceRows).Msg("item count differs from source rows")
		s.warn(eventCh, StageParse, fmt.Sprintf("Model returned %d items for %d source rows", len(items), sourceRows))
	}

	s.stage(eventCh, StageSequence, "Sorting and numbering")
	sequence.Sort(items)
	filled := s.cfg.Numberer.Fill(items, sequence.NumberingConfig{
		StartNumber:  req.BLStartNumber,
		MiddleFormat: sequence.SanitizeMiddle(req.BLMiddleFormat),
		Year:         req.BLYear,
	})
	r.logger.Debug().Int("filled", filled).Msg("b/l numbers assigned")

	result := &domain.NormalizeResult{
		Data: items,
		Metadata: domain.NormalizeSummary{
			TotalItems: len(items),
			ModelUsed:  req.ModelSource,
			Filename:   req.Filename,
		},
	}

	if req.Enrich && len(items) > 0 {
		s.stage(eventCh, StageEnrich, fmt.Sprintf("Classifying %d items", len(items)))
		_, stats, err := s.enricher(r, req.Strategy, eventCh).EnrichLineItems(ctx, items)
		result.Metadata.Enrichment = &stats
		r.HSAdded, r.HSValidated, r.HSFailed = stats.HSCodesAdded, stats.ValidationsRun, stats.Failed
		if err != nil {
			return nil, s.fail(ctx, r, eventCh, err)
		}
		if stats.Failed > 0 {
			s.warn(eventCh, StageEnrich, fmt.Sprintf("%d items could not be classified", stats.Failed))
		}
	}

	r.ItemCount = len(items)
	s.succeed(ctx, r, eventCh, fmt.Sprintf("Normalized %d items", len(items)))
	return result, nil
}

// extractTable returns the first sheet as CSV text and the number of
// non-blank data rows under its header. A sheet with only a header counts
// zero rows.
func extractTable(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, domain.IOError("failed to open staged upload", err)
	}
	defer f.Close()

	table, err := tabular.ExtractCSV(f)
	if err != nil {
		return "", 0, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", 0, domain.IOError("failed to rewind staged upload", err)
	}
	records, err := tabular.ExtractRecords(f)
	if err != nil && domain.KindOf(err) != domain.ErrorTypeEmptyInput {
		return "", 0, err
	}
	return table, len(records), nil
}
