package ceisa

import (
	"github.com/Atarvano/ManifestAi/internal/domain"
)

// Build groups the flat workbook rows into Header -> Master -> House.
//
// The first detail row of a house B/L seeds the house; every detail row is
// also kept in its Items. Goods attach to the first house, in master order,
// with a matching house B/L. Containers and documents attach by master and
// house B/L. Rows that match nothing are dropped and counted in Dropped.
func Build(wb *domain.CeisaWorkbook) *domain.UnifiedManifest {
	m := domain.NewUnifiedManifest(wb.Header)
	m.Respons = wb.Respons

	houses := make(map[string]map[string]*domain.HouseEntry)
	for _, rec := range wb.Masters {
		if _, created := m.AddMaster(rec); created {
			houses[rec.NoMasterBL] = make(map[string]*domain.HouseEntry)
		}
	}

	for _, d := range wb.Detils {
		master, ok := m.Master(d.NoMasterBL)
		if !ok {
			m.Dropped.Detils++
			continue
		}
		byHouse := houses[d.NoMasterBL]
		house, ok := byHouse[d.NoHouseBL]
		if !ok {
			house = &domain.HouseEntry{DetilRecord: d}
			byHouse[d.NoHouseBL] = house
			master.Houses = append(master.Houses, house)
		}
		house.Items = append(house.Items, d)
	}

	for _, b := range wb.Barangs {
		house := firstHouse(m, houses, b.NoHouseBL)
		if house == nil {
			m.Dropped.Barangs++
			continue
		}
		house.Barangs = append(house.Barangs, b)
	}

	for _, k := range wb.Kontainers {
		house := houses[k.NoMasterBL][k.NoHouseBL]
		if house == nil {
			m.Dropped.Containers++
			continue
		}
		house.Containers = append(house.Containers, k)
	}

	for _, d := range wb.Dokumens {
		house := houses[d.NoMasterBL][d.NoHouseBL]
		if house == nil {
			m.Dropped.Dokumens++
			continue
		}
		house.Dokumens = append(house.Dokumens, d)
	}

	m.Summary = summarize(wb)
	return m
}

func firstHouse(m *domain.UnifiedManifest, houses map[string]map[string]*domain.HouseEntry, noHouseBL string) *domain.HouseEntry {
	for _, master := range m.Masters {
		if h, ok := houses[master.NoMasterBL][noHouseBL]; ok {
			return h
		}
	}
	return nil
}

// summarize counts distinct non-empty keys over the raw rows.
func summarize(wb *domain.CeisaWorkbook) domain.ManifestSummary {
	masters := make(map[string]struct{})
	for _, r := range wb.Masters {
		if r.NoMasterBL != "" {
			masters[r.NoMasterBL] = struct{}{}
		}
	}
	houses := make(map[string]struct{})
	for _, r := range wb.Detils {
		if r.NoHouseBL != "" {
			houses[r.NoHouseBL] = struct{}{}
		}
	}
	containers := make(map[string]struct{})
	for _, r := range wb.Kontainers {
		if r.NomorKontainer != "" {
			containers[r.NomorKontainer] = struct{}{}
		}
	}

	return domain.ManifestSummary{
		TotalMasterBL:  len(masters),
		TotalHouseBL:   len(houses),
		TotalBarang:    len(wb.Barangs),
		TotalKontainer: len(containers),
	}
}
