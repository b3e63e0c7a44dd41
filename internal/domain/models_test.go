package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemMarshalJSON(t *testing.T) {
	item := LineItem{
		ItemNo:      1,
		Description: "Water pump",
		HSCode:      "8413709900",
		Quantity:    2,
		Extra:       map[string]any{"master_bl": "MBL-1"},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, float64(1), got["item_no"])
	assert.Equal(t, "8413709900", got["hs_code"])
	assert.Equal(t, "MBL-1", got["master_bl"])
	assert.Contains(t, got, "bl_number")
	assert.Nil(t, got["bl_number"])
}

func TestLineItemCanonicalFieldsWinOverExtra(t *testing.T) {
	item := LineItem{ItemNo: 3, Extra: map[string]any{"item_no": "shadow"}}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_no":3`)
}

func TestUnifiedManifestAddMaster(t *testing.T) {
	m := NewUnifiedManifest(nil)

	first, created := m.AddMaster(MasterRecord{NoMasterBL: "MBL1", NamaShipper: "A"})
	assert.True(t, created)

	again, created := m.AddMaster(MasterRecord{NoMasterBL: "MBL1", NamaShipper: "B"})
	assert.False(t, created)
	assert.Same(t, first, again)
	assert.Equal(t, "A", again.NamaShipper)
	assert.Len(t, m.Masters, 1)

	got, ok := m.Master("MBL1")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestUnifiedManifestBarangsArePointers(t *testing.T) {
	m := NewUnifiedManifest(nil)
	master, _ := m.AddMaster(MasterRecord{NoMasterBL: "MBL1"})
	master.Houses = append(master.Houses, &HouseEntry{
		Barangs: []BarangRecord{{UraianBarang: "A"}, {UraianBarang: "B"}},
	})

	for _, b := range m.Barangs() {
		b.HSCode = "1234567890"
	}

	assert.Equal(t, "1234567890", master.Houses[0].Barangs[0].HSCode)
	assert.Equal(t, "1234567890", master.Houses[0].Barangs[1].HSCode)
}
