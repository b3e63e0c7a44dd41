package domain

import (
	"encoding/json"
	"time"
)

// DefaultColumns is the canonical manifest column list used when no
// custom column schema is configured.
var DefaultColumns = []string{
	"item_no",
	"description",
	"hs_code",
	"quantity",
	"unit",
	"unit_price",
	"total_price",
	"weight",
	"volume",
	"country_of_origin",
	"bl_number",
}

// LineItem represents one normalized row of cargo
type LineItem struct {
	ItemNo          int     `json:"item_no"`
	Description     string  `json:"description"`
	HSCode          string  `json:"hs_code" validate:"omitempty,numeric,min=6,max=10"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
	Weight          float64 `json:"weight"`
	Volume          float64 `json:"volume"`
	CountryOfOrigin string  `json:"country_of_origin"`
	BLNumber        string  `json:"bl_number"`

	// Extra holds keys returned by the model beyond the canonical schema,
	// e.g. when the configured column list is extended.
	Extra map[string]any `json:"-"`
}

// MarshalJSON emits the canonical fields followed by any extra keys.
// An empty bl_number is encoded as null.
func (li LineItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 11+len(li.Extra))
	for k, v := range li.Extra {
		out[k] = v
	}
	out["item_no"] = li.ItemNo
	out["description"] = li.Description
	out["hs_code"] = li.HSCode
	out["quantity"] = li.Quantity
	out["unit"] = li.Unit
	out["unit_price"] = li.UnitPrice
	out["total_price"] = li.TotalPrice
	out["weight"] = li.Weight
	out["volume"] = li.Volume
	out["country_of_origin"] = li.CountryOfOrigin
	if li.BLNumber == "" {
		out["bl_number"] = nil
	} else {
		out["bl_number"] = li.BLNumber
	}
	return json.Marshal(out)
}

// ExtraString returns an extra field as a trimmed string, or "" when absent.
func (li LineItem) ExtraString(key string) string {
	v, ok := li.Extra[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// NormalizeResult is the output of the normalize pipeline
type NormalizeResult struct {
	Data     []LineItem       `json:"data"`
	Metadata NormalizeSummary `json:"metadata"`
}

// NormalizeSummary describes a normalize run
type NormalizeSummary struct {
	TotalItems int              `json:"totalItems"`
	ModelUsed  string           `json:"modelUsed"`
	Filename   string           `json:"filename"`
	Enrichment *EnrichmentStats `json:"enrichment,omitempty"`
}

// EnrichmentStats counts the outcome of one HS-code enrichment pass
type EnrichmentStats struct {
	HSCodesAdded   int `json:"hsCodesAdded"`
	ValidationsRun int `json:"validationsRun"`
	Failed         int `json:"failed"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	EventStart    EventType = "start"
	EventStage    EventType = "stage"
	EventProgress EventType = "progress"
	EventWarning  EventType = "warning"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// StreamEvent represents an event emitted while a pipeline runs
type StreamEvent struct {
	Type      EventType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Current   int       `json:"current,omitempty"`
	Total     int       `json:"total,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
