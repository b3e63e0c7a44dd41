package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("gemini", "ok"))
	ObserveProviderCall("gemini", "ok", 150*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("gemini", "ok")))

	before = testutil.ToFloat64(ProviderFallbacksTotal.WithLabelValues("gemini", "deepseek"))
	RecordFallback("gemini", "deepseek")
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderFallbacksTotal.WithLabelValues("gemini", "deepseek")))

	before = testutil.ToFloat64(OrphansDroppedTotal.WithLabelValues("barang"))
	RecordOrphans(domain.DroppedOrphans{Barangs: 2, Dokumens: 1})
	assert.Equal(t, before+2, testutil.ToFloat64(OrphansDroppedTotal.WithLabelValues("barang")))
}

func TestWriteFile(t *testing.T) {
	RecordLookup(LookupAdded)
	RecordPipelineRun("normalize", "success", time.Second)

	path := filepath.Join(t.TempDir(), "manifest.prom")
	require.NoError(t, WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "manifest_hs_lookups_total")
	assert.Contains(t, string(data), "manifest_pipeline_runs_total")
}
