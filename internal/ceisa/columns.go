package ceisa

import (
	"strings"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/hscode"
	"github.com/Atarvano/ManifestAi/internal/numeric"
)

// Sheet names, in workbook order.
const (
	SheetHeader    = "Header"
	SheetMaster    = "Master Entry"
	SheetDetil     = "Detil"
	SheetBarang    = "Barang"
	SheetDokumen   = "Dokumen"
	SheetKontainer = "Kontainer"
	SheetRespon    = "Respon Header"
)

// Sheets lists every sheet of a CEISA manifest workbook.
var Sheets = []string{SheetHeader, SheetMaster, SheetDetil, SheetBarang, SheetDokumen, SheetKontainer, SheetRespon}

// column binds one sheet column to a record field.
type column[T any] struct {
	name string
	get  func(*T) any
	set  func(*T, string)
}

func text[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) any { return *field(r) },
		set:  func(r *T, v string) { *field(r) = v },
	}
}

func number[T any](name string, field func(*T) *float64) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) any { return *field(r) },
		set:  func(r *T, v string) { *field(r) = numeric.ParseComma(v) },
	}
}

// reading applies fn to the cell text before it is stored.
func (c column[T]) reading(fn func(string) string) column[T] {
	set := c.set
	c.set = func(r *T, v string) { set(r, fn(v)) }
	return c
}

func names[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

type (
	hdr = domain.HeaderRecord
	mst = domain.MasterRecord
	dtl = domain.DetilRecord
	brg = domain.BarangRecord
	dok = domain.DokumenRecord
	knt = domain.KontainerRecord
	rsp = domain.ResponRecord
)

var headerColumns = []column[hdr]{
	text("NOMOR AJU", func(r *hdr) *string { return &r.NomorAju }),
	text("ID DATA", func(r *hdr) *string { return &r.IDData }),
	text("NPWP", func(r *hdr) *string { return &r.NPWP }),
	text("JNS MANIFEST", func(r *hdr) *string { return &r.JnsManifest }),
	text("KD JNS MANIFEST", func(r *hdr) *string { return &r.KdJnsManifest }),
	text("KPPBC", func(r *hdr) *string { return &r.KPPBC }),
	text("NO BC 10", func(r *hdr) *string { return &r.NoBC10 }),
	text("TGL BC 10", func(r *hdr) *string { return &r.TglBC10 }),
	text("NO BC 11", func(r *hdr) *string { return &r.NoBC11 }),
	text("TGL BC 11", func(r *hdr) *string { return &r.TglBC11 }),
	text("NAMA SARANA ANGKUT", func(r *hdr) *string { return &r.NamaSaranaAngkut }),
	text("KODE MODA", func(r *hdr) *string { return &r.KodeModa }),
	text("CALL SIGN", func(r *hdr) *string { return &r.CallSign }),
	text("NO IMO", func(r *hdr) *string { return &r.NoIMO }),
	text("NO_MMSI", func(r *hdr) *string { return &r.NoMMSI }),
	text("NEGARA", func(r *hdr) *string { return &r.Negara }),
	text("TANGGAL TIBA", func(r *hdr) *string { return &r.TanggalTiba }),
	text("PEL TUP", func(r *hdr) *string { return &r.PelTup }),
	text("PEL MUAT", func(r *hdr) *string { return &r.PelMuat }),
	text("PEL TRANSIT", func(r *hdr) *string { return &r.PelTransit }),
	text("PEL BONGKAR", func(r *hdr) *string { return &r.PelBongkar }),
	text("VOYAGE", func(r *hdr) *string { return &r.Voyage }),
	text("VOYAGE OUT", func(r *hdr) *string { return &r.VoyageOut }),
	text("TANGGAL BERANGKAT", func(r *hdr) *string { return &r.TanggalBerangkat }),
	text("NO FLIGHT", func(r *hdr) *string { return &r.NoFlight }),
	text("NO INVOICE", func(r *hdr) *string { return &r.NoInvoice }),
	text("NO CO", func(r *hdr) *string { return &r.NoCO }),
	text("TGL CO", func(r *hdr) *string { return &r.TglCO }),
	text("TGL BC12", func(r *hdr) *string { return &r.TglBC12 }),
	text("NO BC12", func(r *hdr) *string { return &r.NoBC12 }),
	text("VERSI", func(r *hdr) *string { return &r.Versi }),
	text("FLAG BATAL", func(r *hdr) *string { return &r.FlagBatal }),
	text("NO POS DOKUMEN", func(r *hdr) *string { return &r.NoPosDokumen }),
	text("TGL POS DOKUMEN", func(r *hdr) *string { return &r.TglPosDokumen }),
	text("KODE BENDERA", func(r *hdr) *string { return &r.KodeBendera }),
	text("KODE GUDANG", func(r *hdr) *string { return &r.KodeGudang }),
	number("TOTAL KONT", func(r *hdr) *float64 { return &r.TotalKont }),
	number("TOTAL BARANG", func(r *hdr) *float64 { return &r.TotalBarang }),
	number("TOTAL MASTER", func(r *hdr) *float64 { return &r.TotalMaster }),
	number("TOTAL HOUSE", func(r *hdr) *float64 { return &r.TotalHouse }),
	number("TOTAL BERAT", func(r *hdr) *float64 { return &r.TotalBerat }),
	number("TOTAL VOLUME", func(r *hdr) *float64 { return &r.TotalVolume }),
	text("KD TPS", func(r *hdr) *string { return &r.KdTPS }),
}

var masterColumns = []column[mst]{
	text("ID DATA", func(r *mst) *string { return &r.IDData }),
	text("ID MASTER", func(r *mst) *string { return &r.IDMaster }),
	text("NO MASTER BL", func(r *mst) *string { return &r.NoMasterBL }),
	text("TGL MASTER BL", func(r *mst) *string { return &r.TglMasterBL }),
	text("NAMA SHIPPER", func(r *mst) *string { return &r.NamaShipper }),
	text("NAMA CONSIGNEE", func(r *mst) *string { return &r.NamaConsignee }),
	number("JUMLAH HOUSE", func(r *mst) *float64 { return &r.JumlahHouse }),
	number("TOTAL KONTAINER", func(r *mst) *float64 { return &r.TotalKontainer }),
	number("TOTAL BERAT", func(r *mst) *float64 { return &r.TotalBerat }),
	number("TOTAL VOLUME", func(r *mst) *float64 { return &r.TotalVolume }),
	text("PEL MUAT", func(r *mst) *string { return &r.PelMuat }),
	text("PEL TRANSIT", func(r *mst) *string { return &r.PelTransit }),
	text("PEL BONGKAR", func(r *mst) *string { return &r.PelBongkar }),
}

var detilColumns = []column[dtl]{
	text("ID DATA", func(r *dtl) *string { return &r.IDData }),
	text("ID DETIL", func(r *dtl) *string { return &r.IDDetil }),
	text("ID MASTER", func(r *dtl) *string { return &r.IDMaster }),
	text("NO MASTER BL", func(r *dtl) *string { return &r.NoMasterBL }),
	text("NO HOUSE BL", func(r *dtl) *string { return &r.NoHouseBL }),
	text("TGL HOUSE BL", func(r *dtl) *string { return &r.TglHouseBL }),
	text("NAMA SHIPPER", func(r *dtl) *string { return &r.NamaShipper }),
	text("NPWP SHIPPER", func(r *dtl) *string { return &r.NPWPShipper }),
	text("NAMA CONSIGNEE", func(r *dtl) *string { return &r.NamaConsignee }),
	text("NPWP CONSIGNEE", func(r *dtl) *string { return &r.NPWPConsignee }),
	text("ALAMAT CONSIGNEE", func(r *dtl) *string { return &r.AlamatConsignee }),
	text("JENIS BARANG", func(r *dtl) *string { return &r.JenisBarang }),
	number("JUMLAH", func(r *dtl) *float64 { return &r.Jumlah }),
	text("SATUAN JUMLAH", func(r *dtl) *string { return &r.SatuanJumlah }),
	number("BERAT KOTOR", func(r *dtl) *float64 { return &r.BeratKotor }),
	number("VOLUME", func(r *dtl) *float64 { return &r.Volume }),
	text("MARKS", func(r *dtl) *string { return &r.Marks }),
	text("NOMOR KONTAINER", func(r *dtl) *string { return &r.NomorKontainer }),
}

var barangColumns = []column[brg]{
	text("ID DATA", func(r *brg) *string { return &r.IDData }),
	text("ID DETIL", func(r *brg) *string { return &r.IDDetil }),
	text("NO HOUSE BL", func(r *brg) *string { return &r.NoHouseBL }),
	text("HS CODE", func(r *brg) *string { return &r.HSCode }).reading(hscode.PadTariffLine),
	text("URAIAN BARANG", func(r *brg) *string { return &r.UraianBarang }),
	number("JUMLAH", func(r *brg) *float64 { return &r.Jumlah }),
	text("SATUAN JUMLAH", func(r *brg) *string { return &r.SatuanJumlah }),
	number("BERAT KOTOR", func(r *brg) *float64 { return &r.BeratKotor }),
	number("VOLUME", func(r *brg) *float64 { return &r.Volume }),
}

var dokumenColumns = []column[dok]{
	text("ID DATA", func(r *dok) *string { return &r.IDData }),
	text("ID DOKUMEN", func(r *dok) *string { return &r.IDDokumen }),
	text("NO MASTER BL", func(r *dok) *string { return &r.NoMasterBL }),
	text("NO HOUSE BL", func(r *dok) *string { return &r.NoHouseBL }),
	text("JENIS DOKUMEN", func(r *dok) *string { return &r.JenisDokumen }),
	text("NOMOR DOKUMEN", func(r *dok) *string { return &r.NomorDokumen }),
	text("TANGGAL DOKUMEN", func(r *dok) *string { return &r.TanggalDokumen }),
}

var kontainerColumns = []column[knt]{
	text("ID DATA", func(r *knt) *string { return &r.IDData }),
	text("ID KONTAINER", func(r *knt) *string { return &r.IDKontainer }),
	text("NO MASTER BL", func(r *knt) *string { return &r.NoMasterBL }),
	text("NO HOUSE BL", func(r *knt) *string { return &r.NoHouseBL }),
	text("NOMOR KONTAINER", func(r *knt) *string { return &r.NomorKontainer }).reading(strings.ToUpper),
	text("UKURAN KONTAINER", func(r *knt) *string { return &r.UkuranKontainer }),
	text("TIPE KONTAINER", func(r *knt) *string { return &r.TipeKontainer }),
	text("JENIS KONTAINER", func(r *knt) *string { return &r.JenisKontainer }),
	text("NOMOR SEGEL", func(r *knt) *string { return &r.NomorSegel }),
	text("STATUS KONTAINER", func(r *knt) *string { return &r.StatusKontainer }),
}

var responColumns = []column[rsp]{
	text("ID RESPON", func(r *rsp) *string { return &r.IDRespon }),
	text("NOMOR AJU", func(r *rsp) *string { return &r.NomorAju }),
	text("KODE RESPON", func(r *rsp) *string { return &r.KodeRespon }),
	text("TANGGAL RESPON", func(r *rsp) *string { return &r.TanggalRespon }),
	text("WAKTU RESPON", func(r *rsp) *string { return &r.WaktuRespon }),
	text("NOMOR DOKUMEN RESPON", func(r *rsp) *string { return &r.NomorDokumenRespon }),
	text("TANGGAL DOKUMEN RESPON", func(r *rsp) *string { return &r.TanggalDokumenRespon }),
	text("KODE KANTOR", func(r *rsp) *string { return &r.KodeKantor }),
	text("BYTE STREAM PDF", func(r *rsp) *string { return &r.ByteStreamPDF }),
	text("FLAG BACA", func(r *rsp) *string { return &r.FlagBaca }),
}
