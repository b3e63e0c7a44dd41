package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Atarvano/ManifestAi/internal/ceisa"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/metrics"
)

// CustomsRequest is one CEISA workbook to enrich.
type CustomsRequest struct {
	Filename    string
	Source      io.Reader
	ModelSource string
	Strategy    string

	// OutputPath receives the processed workbook. Empty skips the export.
	OutputPath string
}

// CustomsResult is the outcome of a customs run.
type CustomsResult struct {
	Manifest *domain.UnifiedManifest
	Stats    domain.EnrichmentStats
	Output   string
}

// Customs parses a CEISA workbook, links its sheets into a unified
// manifest, fills HS codes of the goods lines and writes the workbook
// back out.
func (s *Service) Customs(ctx context.Context, req CustomsRequest, eventCh chan<- domain.StreamEvent) (*CustomsResult, error) {
	ctx, r := s.begin(ctx, PipelineCustoms, req.Filename, req.ModelSource, eventCh)

	s.stage(eventCh, StageStaging, "Staging upload")
	path, cleanup, err := StageUpload(s.cfg.UploadDir, req.Filename, req.Source)
	defer cleanup()
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}

	s.stage(eventCh, StageWorkbook, "Reading CEISA sheets")
	wb, err := readWorkbook(path)
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}
	if len(wb.MissingSheets) > 0 {
		r.logger.Warn().Str("sheets", strings.Join(wb.MissingSheets, ", ")).Msg("workbook is missing sheets")
		s.warn(eventCh, StageWorkbook, "Missing sheets: "+strings.Join(wb.MissingSheets, ", "))
	}

	s.stage(eventCh, StageBuild, "Linking masters, houses and goods")
	m := ceisa.Build(wb)
	if d := m.Dropped; d.Total() > 0 {
		metrics.RecordOrphans(d)
		r.logger.Warn().
			Int("detils", d.Detils).
			Int("barangs", d.Barangs).
			Int("containers", d.Containers).
			Int("dokumens", d.Dokumens).
			Msg("dropped rows without a matching master or house")
		s.warn(eventCh, StageBuild, fmt.Sprintf("Dropped %d unmatched rows", d.Total()))
	}
	r.logger.Info().
		Int("masters", m.Summary.TotalMasterBL).
		Int("houses", m.Summary.TotalHouseBL).
		Int("barangs", m.Summary.TotalBarang).
		Msg("manifest built")

	s.stage(eventCh, StageEnrich, fmt.Sprintf("Classifying %d goods lines", m.Summary.TotalBarang))
	stats, err := ceisa.Enrich(ctx, m, s.enricher(r, req.Strategy, eventCh))
	r.HSAdded, r.HSValidated, r.HSFailed = stats.HSCodesAdded, stats.ValidationsRun, stats.Failed
	if err != nil {
		return nil, s.fail(ctx, r, eventCh, err)
	}

	result := &CustomsResult{Manifest: m, Stats: stats}
	if req.OutputPath != "" {
		s.stage(eventCh, StageExport, "Writing CEISA workbook")
		if err := ceisa.ExportFile(req.OutputPath, m); err != nil {
			return nil, s.fail(ctx, r, eventCh, err)
		}
		result.Output = req.OutputPath
	}

	r.ItemCount = m.Summary.TotalBarang
	s.succeed(ctx, r, eventCh, fmt.Sprintf("Processed %d goods lines, %d HS codes added", m.Summary.TotalBarang, stats.HSCodesAdded))
	return result, nil
}

func readWorkbook(path string) (*domain.CeisaWorkbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.IOError("failed to open staged upload", err)
	}
	defer f.Close()

	return ceisa.ParseWorkbook(f)
}
