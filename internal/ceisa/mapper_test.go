package ceisa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

func TestFromLineItems(t *testing.T) {
	now := time.Date(2025, time.November, 14, 8, 0, 0, 0, time.UTC)
	items := []domain.LineItem{
		{
			ItemNo: 1, Description: "Water pump", HSCode: "841370", Quantity: 10, Unit: "PCS",
			Weight: 800, Volume: 2.5, BLNumber: "01/twn/blw-xi/2025",
			Extra: map[string]any{"master_bl": "mbl 777", "container_no": "mscu 1234567", "marks": "MARKS: ABC"},
		},
		{
			ItemNo: 2, Description: "Gate valve", Volume: 0.5,
			Extra: map[string]any{"master_bl": "MBL777", "gross_weight": "1.250,5", "container_no": "12"},
		},
		{ItemNo: 3, Description: "Filter"},
	}

	m := FromLineItems(items, HeaderInfo{KPPBC: "040300", SaranaAngkut: "KM SINAR", Now: func() time.Time { return now }})

	require.NotNil(t, m.Header)
	h := m.Header
	assert.Equal(t, "040300", h.KPPBC)
	assert.Equal(t, "KM SINAR", h.NamaSaranaAngkut)
	assert.Equal(t, "INWARD", h.JnsManifest)
	assert.Equal(t, "2025-11-14", h.TanggalTiba)
	assert.Len(t, h.IDData, 16)
	assert.Equal(t, 2.0, h.TotalMaster)
	assert.Equal(t, 3.0, h.TotalHouse)
	assert.Equal(t, 3.0, h.TotalBarang)
	assert.Equal(t, 2.0, h.TotalKont)
	assert.Equal(t, 2050.5, h.TotalBerat)

	require.Len(t, m.Masters, 2)
	first := m.Masters[0]
	assert.Equal(t, "MBL777", first.NoMasterBL)
	assert.Equal(t, 2.0, first.JumlahHouse)
	assert.Equal(t, 2.0, first.TotalKontainer)
	assert.Equal(t, DefaultMasterBL, m.Masters[1].NoMasterBL)

	require.Len(t, first.Houses, 2)
	pump := first.Houses[0]
	assert.Equal(t, "01/TWN/BLW-XI/2025", pump.NoHouseBL)
	assert.Equal(t, first.IDMaster, pump.IDMaster)
	assert.Equal(t, "ABC", pump.Marks)
	assert.Equal(t, "MSCU1234567", pump.NomorKontainer)
	require.Len(t, pump.Barangs, 1)
	assert.Equal(t, "8413700000", pump.Barangs[0].HSCode)
	assert.Equal(t, pump.IDDetil, pump.Barangs[0].IDDetil)
	require.Len(t, pump.Containers, 1)
	assert.Equal(t, DefaultContainerSz, pump.Containers[0].UkuranKontainer)
	require.Len(t, pump.Dokumens, 1)
	assert.Equal(t, "INV-01/TWN/BLW-XI/2025", pump.Dokumens[0].NomorDokumen)

	valve := first.Houses[1]
	assert.Equal(t, "HBL-2", valve.NoHouseBL)
	assert.Equal(t, 1250.5, valve.BeratKotor)
	assert.Equal(t, DefaultUnit, valve.SatuanJumlah)
	assert.Equal(t, NoMark, valve.Marks)
	assert.Equal(t, "12", valve.NomorKontainer, "invalid container numbers are kept cleaned")

	filter := m.Masters[1].Houses[0]
	assert.Equal(t, "HBL-3", filter.NoHouseBL)
	assert.Empty(t, filter.Containers)
	assert.Empty(t, filter.Barangs[0].HSCode)

	assert.Zero(t, m.Dropped.Total())
	assert.Equal(t, 3, m.Summary.TotalHouseBL)
}

func TestFromLineItemsEmpty(t *testing.T) {
	m := FromLineItems(nil, HeaderInfo{})

	require.NotNil(t, m.Header)
	assert.Empty(t, m.Masters)
	assert.Zero(t, m.Header.TotalHouse)
}
