package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

func november() time.Time {
	return time.Date(2025, time.November, 14, 9, 30, 0, 0, time.UTC)
}

func TestSortIsStable(t *testing.T) {
	items := []domain.LineItem{
		{ItemNo: 3, Description: "c"},
		{ItemNo: 0, Description: "missing-1"},
		{ItemNo: 1, Description: "a1"},
		{ItemNo: 1, Description: "a2"},
		{ItemNo: 0, Description: "missing-2"},
		{ItemNo: 2, Description: "b"},
	}

	Sort(items)

	var got []string
	for _, it := range items {
		got = append(got, it.Description)
	}
	assert.Equal(t, []string{"missing-1", "missing-2", "a1", "a2", "b", "c"}, got)
}

func TestRoman(t *testing.T) {
	want := []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	for m := time.January; m <= time.December; m++ {
		assert.Equal(t, want[m-1], Roman(m))
	}
	assert.Equal(t, "I", Roman(0))
}

func TestGenerate(t *testing.T) {
	n := Numberer{Now: november}
	cfg := NumberingConfig{StartNumber: 1, MiddleFormat: "TWN/BLW", Year: 2025}

	assert.Equal(t, "01/TWN/BLW-XI/2025", n.Generate(cfg, 0))
	assert.Equal(t, "10/TWN/BLW-XI/2025", n.Generate(cfg, 9))
	assert.Equal(t, "100/TWN/BLW-XI/2025", n.Generate(cfg, 99))
	assert.Equal(t, "00/TWN/BLW-XI/2025", n.Generate(NumberingConfig{MiddleFormat: "TWN/BLW", Year: 2025}, 0))
}

func TestGenerateDefaults(t *testing.T) {
	n := Numberer{Now: november}
	assert.Equal(t, "05/TWN/BLW-XI/2025", n.Generate(NumberingConfig{StartNumber: 5}, 0))
}

func TestBatch(t *testing.T) {
	n := Numberer{Now: november}
	got := n.Batch(NumberingConfig{StartNumber: 98, MiddleFormat: "ABC", Year: 2024}, 3)
	assert.Equal(t, []string{"98/ABC-XI/2024", "99/ABC-XI/2024", "100/ABC-XI/2024"}, got)
	assert.Empty(t, n.Batch(NumberingConfig{}, 0))
}

func TestFillNeverOverwrites(t *testing.T) {
	items := []domain.LineItem{
		{ItemNo: 1},
		{ItemNo: 2, BLNumber: "HBL-777/X"},
		{ItemNo: 3, BLNumber: "   "},
	}
	n := Numberer{Now: november}

	filled := n.Fill(items, NumberingConfig{StartNumber: 1, MiddleFormat: "TWN/BLW", Year: 2025})
	require.Equal(t, 2, filled)
	assert.Equal(t, "01/TWN/BLW-XI/2025", items[0].BLNumber)
	assert.Equal(t, "HBL-777/X", items[1].BLNumber)
	assert.Equal(t, "03/TWN/BLW-XI/2025", items[2].BLNumber)
}

func TestFillReadsClockOnce(t *testing.T) {
	// The first reading is New Year's Eve; any later reading is January.
	readings := 0
	n := Numberer{Now: func() time.Time {
		readings++
		if readings == 1 {
			return time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
		}
		return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	}}

	items := make([]domain.LineItem, 3)
	require.Equal(t, 3, n.Fill(items, NumberingConfig{StartNumber: 1}))
	assert.Equal(t, 1, readings)
	for i, it := range items {
		assert.Regexp(t, `-XII/2025$`, it.BLNumber, "item %d", i)
	}
}

func TestSanitizeMiddle(t *testing.T) {
	assert.Equal(t, "TWN/BLW", SanitizeMiddle("  TWN//BLW "))
	assert.Equal(t, "A/B/C", SanitizeMiddle("A///B//C"))
	assert.Equal(t, DefaultMiddleFormat, SanitizeMiddle(" "))
}
