package ceisa

import (
	"context"
	"strings"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
)

// UnknownGoods is the lookup description used when a goods line has none.
const UnknownGoods = "UNKNOWN"

// CodeEnricher fills HS codes in place.
type CodeEnricher interface {
	Enrich(ctx context.Context, targets []hscode.Target) (domain.EnrichmentStats, error)
}

// Enrich looks up HS codes for every goods line of m and pads found codes
// to the ten-digit tariff line. The goods description falls back to the
// house's kind of goods. Stats are also stored on m.
func Enrich(ctx context.Context, m *domain.UnifiedManifest, enricher CodeEnricher) (domain.EnrichmentStats, error) {
	var targets []hscode.Target
	for _, master := range m.Masters {
		for _, house := range master.Houses {
			for i := range house.Barangs {
				b := &house.Barangs[i]
				targets = append(targets, hscode.Target{
					Description: goodsDescription(b, house),
					Code:        &b.HSCode,
				})
			}
		}
	}

	stats, err := enricher.Enrich(ctx, targets)
	for _, b := range m.Barangs() {
		b.HSCode = hscode.PadTariffLine(b.HSCode)
	}
	m.EnrichmentStats = &stats
	return stats, err
}

func goodsDescription(b *domain.BarangRecord, house *domain.HouseEntry) string {
	if s := strings.TrimSpace(b.UraianBarang); s != "" {
		return s
	}
	if s := strings.TrimSpace(house.JenisBarang); s != "" {
		return s
	}
	return UnknownGoods
}
