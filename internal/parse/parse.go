// Package parse turns a model's text reply into validated line items.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
	"github.com/Atarvano/ManifestAi/internal/numeric"
)

// ExcerptLimit bounds the raw reply quoted in parse errors.
const ExcerptLimit = 500

var (
	openFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	closeFence = regexp.MustCompile("\r?\n?```$")
	validate   = validator.New()
)

// Parse strips one surrounding code fence and decodes the reply, which
// must be a JSON array. Numbers are kept as json.Number.
func Parse(raw string) ([]any, error) {
	text := StripFence(raw)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.InvalidJSONError("failed to parse AI response as JSON: "+Excerpt(raw), err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.InvalidJSONError("unexpected data after JSON value: "+Excerpt(raw), err)
	}

	arr, ok := v.([]any)
	if !ok {
		return nil, domain.UnexpectedShapeError(fmt.Sprintf("AI response is a JSON %s, expected an array", kind(v)), nil)
	}
	return arr, nil
}

// StripFence removes a single leading ``` or ```lang marker and a single
// trailing ``` marker, then trims whitespace.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = openFence.ReplaceAllString(text, "")
		text = closeFence.ReplaceAllString(strings.TrimSpace(text), "")
	}
	return strings.TrimSpace(text)
}

// Excerpt returns at most ExcerptLimit bytes of raw for diagnostics,
// cut on a rune boundary.
func Excerpt(raw string) string {
	if len(raw) <= ExcerptLimit {
		return raw
	}
	cut := ExcerptLimit
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut] + "..."
}

// LineItems decodes records into line items. Every record must be an
// object; scalar fields accept numbers or numeric strings, and hs_code is
// normalized. Keys outside the canonical schema are kept in Extra.
func LineItems(records []any) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(records))
	for i, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("item %d is a JSON %s, expected an object", i+1, kind(rec)), nil)
		}

		item, err := lineItem(obj)
		if err != nil {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("item %d: %v", i+1, err), err)
		}
		if err := validate.Struct(item); err != nil {
			return nil, domain.UnexpectedShapeError(fmt.Sprintf("item %d failed validation", i+1), err)
		}
		items = append(items, item)
	}
	return items, nil
}

func lineItem(obj map[string]any) (domain.LineItem, error) {
	var (
		item domain.LineItem
		errs []error
	)

	str := func(key string) string {
		s, err := scalarString(obj[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return strings.TrimSpace(s)
	}
	num := func(key string) float64 {
		if err := scalar(obj[key]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return 0
		}
		return numeric.FromAny(obj[key])
	}

	item.ItemNo = int(num("item_no"))
	item.Description = str("description")
	item.HSCode = hscode.Normalize(str("hs_code"))
	item.Quantity = num("quantity")
	item.Unit = str("unit")
	item.UnitPrice = num("unit_price")
	item.TotalPrice = num("total_price")
	item.Weight = num("weight")
	item.Volume = num("volume")
	item.CountryOfOrigin = str("country_of_origin")
	item.BLNumber = str("bl_number")

	for k, v := range obj {
		if canonical[k] {
			continue
		}
		if item.Extra == nil {
			item.Extra = make(map[string]any)
		}
		item.Extra[k] = v
	}

	return item, errors.Join(errs...)
}

var canonical = func() map[string]bool {
	m := make(map[string]bool, len(domain.DefaultColumns))
	for _, c := range domain.DefaultColumns {
		m[c] = true
	}
	return m
}()

func scalar(v any) error {
	switch v.(type) {
	case map[string]any, []any:
		return fmt.Errorf("expected a scalar, got a JSON %s", kind(v))
	}
	return nil
}

func scalarString(v any) (string, error) {
	if err := scalar(v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Items is Parse followed by LineItems.
func Items(raw string) ([]domain.LineItem, error) {
	records, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return LineItems(records)
}

