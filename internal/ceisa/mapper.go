package ceisa

import (
	"fmt"
	"time"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
	"github.com/Atarvano/ManifestAi/internal/numeric"
)

// Defaults written when mapping normalized line items.
const (
	DefaultMasterBL     = "MBL-DEFAULT"
	DefaultUnit         = "PK"
	DefaultDocumentKind = "705"
	DefaultContainerSz  = "20"
	DefaultContainerTyp = "1"
	DefaultStatus       = "FCL"
)

const dateLayout = "2006-01-02"

// HeaderInfo carries the vessel and office fields that a normalized item
// list does not contain.
type HeaderInfo struct {
	KPPBC        string
	SaranaAngkut string
	CallSign     string
	NoIMO        string

	// Now dates the generated header and documents. Defaults to time.Now.
	Now func() time.Time
}

// FromLineItems maps a flat normalized item list to the CEISA model with
// one house B/L per item. The master B/L comes from the "master_bl" extra
// key. Containers come from "container_no" and marks from "marks".
func FromLineItems(items []domain.LineItem, info HeaderInfo) *domain.UnifiedManifest {
	now := time.Now
	if info.Now != nil {
		now = info.Now
	}
	today := now().Format(dateLayout)
	idData := GenerateID()

	header := &domain.HeaderRecord{
		NomorAju:         fmt.Sprintf("0000%d", now().UnixMilli()),
		IDData:           idData,
		JnsManifest:      "INWARD",
		KdJnsManifest:    "1",
		KPPBC:            info.KPPBC,
		NamaSaranaAngkut: info.SaranaAngkut,
		KodeModa:         "1",
		CallSign:         info.CallSign,
		NoIMO:            info.NoIMO,
		TanggalTiba:      today,
	}

	wb := &domain.CeisaWorkbook{Header: header}
	masterIdx := make(map[string]int)

	for i, item := range items {
		mbl := CleanBLNumber(item.ExtraString("master_bl"))
		if mbl == "" {
			mbl = DefaultMasterBL
		}
		hbl := CleanBLNumber(item.BLNumber)
		if hbl == "" {
			hbl = fmt.Sprintf("HBL-%d", i+1)
		}

		weight := item.Weight
		if weight == 0 {
			weight = numeric.Parse(item.ExtraString("gross_weight"))
		}
		unit := item.Unit
		if unit == "" {
			unit = DefaultUnit
		}

		mi, ok := masterIdx[mbl]
		if !ok {
			mi = len(wb.Masters)
			masterIdx[mbl] = mi
			wb.Masters = append(wb.Masters, domain.MasterRecord{
				IDData:        idData,
				IDMaster:      GenerateID(),
				NoMasterBL:    mbl,
				TglMasterBL:   today,
				NamaShipper:   item.ExtraString("shipper"),
				NamaConsignee: item.ExtraString("consignee"),
			})
		}
		master := &wb.Masters[mi]
		master.JumlahHouse++
		master.TotalBerat += weight
		master.TotalVolume += item.Volume

		var container ContainerCheck
		if raw := item.ExtraString("container_no"); raw != "" {
			container = ValidateContainer(raw)
		}

		idDetil := GenerateID()
		wb.Detils = append(wb.Detils, domain.DetilRecord{
			IDData:          idData,
			IDDetil:         idDetil,
			IDMaster:        master.IDMaster,
			NoMasterBL:      mbl,
			NoHouseBL:       hbl,
			TglHouseBL:      today,
			NamaShipper:     item.ExtraString("shipper"),
			NamaConsignee:   item.ExtraString("consignee"),
			AlamatConsignee: item.ExtraString("consignee_address"),
			JenisBarang:     item.Description,
			Jumlah:          item.Quantity,
			SatuanJumlah:    unit,
			BeratKotor:      weight,
			Volume:          item.Volume,
			Marks:           CleanMarks(item.ExtraString("marks")),
			NomorKontainer:  container.Cleaned,
		})

		wb.Barangs = append(wb.Barangs, domain.BarangRecord{
			IDData:       idData,
			IDDetil:      idDetil,
			NoHouseBL:    hbl,
			HSCode:       hscode.PadTariffLine(item.HSCode),
			UraianBarang: item.Description,
			Jumlah:       item.Quantity,
			SatuanJumlah: unit,
			BeratKotor:   weight,
			Volume:       item.Volume,
		})

		wb.Dokumens = append(wb.Dokumens, domain.DokumenRecord{
			IDData:         idData,
			IDDokumen:      GenerateID(),
			NoMasterBL:     mbl,
			NoHouseBL:      hbl,
			JenisDokumen:   DefaultDocumentKind,
			NomorDokumen:   "INV-" + hbl,
			TanggalDokumen: today,
		})

		if container.Cleaned != "" {
			master.TotalKontainer++
			size := item.ExtraString("container_size")
			if size == "" {
				size = DefaultContainerSz
			}
			wb.Kontainers = append(wb.Kontainers, domain.KontainerRecord{
				IDData:          idData,
				IDKontainer:     GenerateID(),
				NoMasterBL:      mbl,
				NoHouseBL:       hbl,
				NomorKontainer:  container.Cleaned,
				UkuranKontainer: size,
				TipeKontainer:   DefaultContainerTyp,
				NomorSegel:      item.ExtraString("seal_no"),
				StatusKontainer: DefaultStatus,
			})
		}

		header.TotalBerat += weight
		header.TotalVolume += item.Volume
	}

	header.TotalMaster = float64(len(wb.Masters))
	header.TotalHouse = float64(len(wb.Detils))
	header.TotalBarang = float64(len(wb.Barangs))
	header.TotalKont = float64(len(wb.Kontainers))

	return Build(wb)
}
