// Package sequence orders line items and assigns B/L numbers.
package sequence

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// DefaultMiddleFormat is the middle segment used when none is configured.
const DefaultMiddleFormat = "TWN/BLW"

var (
	romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	repeatSlash = regexp.MustCompile(`/{2,}`)
)

// NumberingConfig parameterizes generated B/L numbers.
type NumberingConfig struct {
	StartNumber  int
	MiddleFormat string
	Year         int
}

// Sort orders items by ItemNo ascending. Equal numbers keep their
// relative input order.
func Sort(items []domain.LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ItemNo < items[j].ItemNo
	})
}

// Roman returns the Roman numeral of a calendar month.
func Roman(m time.Month) string {
	if m < time.January || m > time.December {
		return romanMonths[0]
	}
	return romanMonths[m-1]
}

// SanitizeMiddle trims s and collapses repeated slashes. Empty input
// yields DefaultMiddleFormat.
func SanitizeMiddle(s string) string {
	s = repeatSlash.ReplaceAllString(strings.TrimSpace(s), "/")
	if s == "" {
		return DefaultMiddleFormat
	}
	return s
}

// Numberer generates B/L numbers. The month segment comes from Now.
type Numberer struct {
	Now func() time.Time
}

func (n Numberer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// resolve fills defaults from a single clock reading and returns the
// month segment taken from that same reading.
func (n Numberer) resolve(cfg NumberingConfig) (NumberingConfig, string) {
	now := n.now()
	if cfg.MiddleFormat == "" {
		cfg.MiddleFormat = DefaultMiddleFormat
	}
	if cfg.Year == 0 {
		cfg.Year = now.Year()
	}
	return cfg, Roman(now.Month())
}

func format(cfg NumberingConfig, month string, index int) string {
	return fmt.Sprintf("%02d/%s-%s/%d", cfg.StartNumber+index, cfg.MiddleFormat, month, cfg.Year)
}

// Generate returns the number for position index, e.g. "01/TWN/BLW-XI/2025".
// Sequence numbers above 99 are printed in full.
func (n Numberer) Generate(cfg NumberingConfig, index int) string {
	cfg, month := n.resolve(cfg)
	return format(cfg, month, index)
}

// Batch returns count consecutive numbers starting at index 0. The clock
// is read once, so a batch never straddles a month boundary.
func (n Numberer) Batch(cfg NumberingConfig, count int) []string {
	cfg, month := n.resolve(cfg)
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, format(cfg, month, i))
	}
	return out
}

// Fill assigns a generated number to every item without one. The index
// used is the item's position, so items should be sorted first. Existing
// numbers are never changed. It returns how many numbers were assigned.
func (n Numberer) Fill(items []domain.LineItem, cfg NumberingConfig) int {
	numbers := n.Batch(cfg, len(items))
	filled := 0
	for i := range items {
		if strings.TrimSpace(items[i].BLNumber) != "" {
			continue
		}
		items[i].BLNumber = numbers[i]
		filled++
	}
	return filled
}
