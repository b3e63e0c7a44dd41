package domain

// HeaderRecord is the single data row of the CEISA "Header" sheet.
type HeaderRecord struct {
	NomorAju         string  `json:"nomor_aju"`
	IDData           string  `json:"id_data"`
	NPWP             string  `json:"npwp"`
	JnsManifest      string  `json:"jns_manifest"`
	KdJnsManifest    string  `json:"kd_jns_manifest"`
	KPPBC            string  `json:"kppbc"`
	NoBC10           string  `json:"no_bc_10"`
	TglBC10          string  `json:"tgl_bc_10"`
	NoBC11           string  `json:"no_bc_11"`
	TglBC11          string  `json:"tgl_bc_11"`
	NamaSaranaAngkut string  `json:"nama_sarana_angkut"`
	KodeModa         string  `json:"kode_moda"`
	CallSign         string  `json:"call_sign"`
	NoIMO            string  `json:"no_imo"`
	NoMMSI           string  `json:"no_mmsi"`
	Negara           string  `json:"negara"`
	TanggalTiba      string  `json:"tanggal_tiba"`
	PelTup           string  `json:"pel_tup"`
	PelMuat          string  `json:"pel_muat"`
	PelTransit       string  `json:"pel_transit"`
	PelBongkar       string  `json:"pel_bongkar"`
	Voyage           string  `json:"voyage"`
	VoyageOut        string  `json:"voyage_out"`
	TanggalBerangkat string  `json:"tanggal_berangkat"`
	NoFlight         string  `json:"no_flight"`
	NoInvoice        string  `json:"no_invoice"`
	NoCO             string  `json:"no_co"`
	TglCO            string  `json:"tgl_co"`
	TglBC12          string  `json:"tgl_bc12"`
	NoBC12           string  `json:"no_bc12"`
	Versi            string  `json:"versi"`
	FlagBatal        string  `json:"flag_batal"`
	NoPosDokumen     string  `json:"no_pos_dokumen"`
	TglPosDokumen    string  `json:"tgl_pos_dokumen"`
	KodeBendera      string  `json:"kode_bendera"`
	KodeGudang       string  `json:"kode_gudang"`
	TotalKont        float64 `json:"total_kont"`
	TotalBarang      float64 `json:"total_barang"`
	TotalMaster      float64 `json:"total_master"`
	TotalHouse       float64 `json:"total_house"`
	TotalBerat       float64 `json:"total_berat"`
	TotalVolume      float64 `json:"total_volume"`
	KdTPS            string  `json:"kd_tps"`
}

// MasterRecord is one row of the "Master Entry" sheet.
type MasterRecord struct {
	IDData         string  `json:"id_data"`
	IDMaster       string  `json:"id_master"`
	NoMasterBL     string  `json:"no_master_bl"`
	TglMasterBL    string  `json:"tgl_master_bl"`
	NamaShipper    string  `json:"nama_shipper"`
	NamaConsignee  string  `json:"nama_consignee"`
	JumlahHouse    float64 `json:"jumlah_house"`
	TotalKontainer float64 `json:"total_kontainer"`
	TotalBerat     float64 `json:"total_berat"`
	TotalVolume    float64 `json:"total_volume"`
	PelMuat        string  `json:"pel_muat"`
	PelTransit     string  `json:"pel_transit"`
	PelBongkar     string  `json:"pel_bongkar"`
}

// DetilRecord is one row of the "Detil" sheet (house B/L detail).
type DetilRecord struct {
	IDData          string  `json:"id_data"`
	IDDetil         string  `json:"id_detil"`
	IDMaster        string  `json:"id_master"`
	NoMasterBL      string  `json:"no_master_bl"`
	NoHouseBL       string  `json:"no_house_bl"`
	TglHouseBL      string  `json:"tgl_house_bl"`
	NamaShipper     string  `json:"nama_shipper"`
	NPWPShipper     string  `json:"npwp_shipper"`
	NamaConsignee   string  `json:"nama_consignee"`
	NPWPConsignee   string  `json:"npwp_consignee"`
	AlamatConsignee string  `json:"alamat_consignee"`
	JenisBarang     string  `json:"jenis_barang"`
	Jumlah          float64 `json:"jumlah"`
	SatuanJumlah    string  `json:"satuan_jumlah"`
	BeratKotor      float64 `json:"berat_kotor"`
	Volume          float64 `json:"volume"`
	Marks           string  `json:"marks"`
	NomorKontainer  string  `json:"nomor_kontainer"`
}

// BarangRecord is one goods line of the "Barang" sheet.
type BarangRecord struct {
	IDData       string  `json:"id_data"`
	IDDetil      string  `json:"id_detil"`
	NoHouseBL    string  `json:"no_house_bl"`
	HSCode       string  `json:"hs_code"`
	UraianBarang string  `json:"uraian_barang"`
	Jumlah       float64 `json:"jumlah"`
	SatuanJumlah string  `json:"satuan_jumlah"`
	BeratKotor   float64 `json:"berat_kotor"`
	Volume       float64 `json:"volume"`
}

// DokumenRecord is one row of the "Dokumen" sheet.
type DokumenRecord struct {
	IDData         string `json:"id_data"`
	IDDokumen      string `json:"id_dokumen"`
	NoMasterBL     string `json:"no_master_bl"`
	NoHouseBL      string `json:"no_house_bl"`
	JenisDokumen   string `json:"jenis_dokumen"`
	NomorDokumen   string `json:"nomor_dokumen"`
	TanggalDokumen string `json:"tanggal_dokumen"`
}

// KontainerRecord is one row of the "Kontainer" sheet.
type KontainerRecord struct {
	IDData          string `json:"id_data"`
	IDKontainer     string `json:"id_kontainer"`
	NoMasterBL      string `json:"no_master_bl"`
	NoHouseBL       string `json:"no_house_bl"`
	NomorKontainer  string `json:"nomor_kontainer"`
	UkuranKontainer string `json:"ukuran_kontainer"`
	TipeKontainer   string `json:"tipe_kontainer"`
	JenisKontainer  string `json:"jenis_kontainer"`
	NomorSegel      string `json:"nomor_segel"`
	StatusKontainer string `json:"status_kontainer"`
}

// ResponRecord is one row of the "Respon Header" sheet.
type ResponRecord struct {
	IDRespon             string `json:"id_respon"`
	NomorAju             string `json:"nomor_aju"`
	KodeRespon           string `json:"kode_respon"`
	TanggalRespon        string `json:"tanggal_respon"`
	WaktuRespon          string `json:"waktu_respon"`
	NomorDokumenRespon   string `json:"nomor_dokumen_respon"`
	TanggalDokumenRespon string `json:"tanggal_dokumen_respon"`
	KodeKantor           string `json:"kode_kantor"`
	ByteStreamPDF        string `json:"byte_stream_pdf"`
	FlagBaca             string `json:"flag_baca"`
}

// CeisaWorkbook holds the flat rows of all seven CEISA sheets.
type CeisaWorkbook struct {
	Header     *HeaderRecord
	Masters    []MasterRecord
	Detils     []DetilRecord
	Barangs    []BarangRecord
	Dokumens   []DokumenRecord
	Kontainers []KontainerRecord
	Respons    []ResponRecord

	// MissingSheets names the expected sheets absent from the source.
	MissingSheets []string
}

// HouseEntry is a house B/L seeded from its first detail row.
type HouseEntry struct {
	DetilRecord
	Items      []DetilRecord     `json:"items"`
	Barangs    []BarangRecord    `json:"barangs"`
	Containers []KontainerRecord `json:"containers"`
	Dokumens   []DokumenRecord   `json:"dokumens"`
}

// MasterEntry is a master B/L with the houses grouped under it.
type MasterEntry struct {
	MasterRecord
	Houses []*HouseEntry `json:"houses"`
}

// ManifestSummary holds distinct-key counts over the parsed sheets.
type ManifestSummary struct {
	TotalMasterBL  int `json:"totalMasterBL"`
	TotalHouseBL   int `json:"totalHouseBL"`
	TotalBarang    int `json:"totalBarang"`
	TotalKontainer int `json:"totalKontainer"`
}

// DroppedOrphans counts rows that could not be attached: detail rows
// whose master B/L is unknown and child rows whose house B/L matched no
// house.
type DroppedOrphans struct {
	Detils     int `json:"detils"`
	Barangs    int `json:"barangs"`
	Containers int `json:"containers"`
	Dokumens   int `json:"dokumens"`
}

// Total returns the number of dropped rows of every kind.
func (d DroppedOrphans) Total() int {
	return d.Detils + d.Barangs + d.Containers + d.Dokumens
}

// UnifiedManifest links Header -> Master B/L -> House B/L -> goods,
// containers and documents.
type UnifiedManifest struct {
	Header  *HeaderRecord   `json:"header"`
	Masters []*MasterEntry  `json:"masters"`
	Respons []ResponRecord  `json:"respons,omitempty"`
	Summary ManifestSummary `json:"summary"`
	Dropped DroppedOrphans  `json:"dropped"`

	EnrichmentStats *EnrichmentStats `json:"enrichmentStats,omitempty"`

	index map[string]*MasterEntry
}

// NewUnifiedManifest returns an empty manifest for the given header.
func NewUnifiedManifest(header *HeaderRecord) *UnifiedManifest {
	return &UnifiedManifest{
		Header: header,
		index:  make(map[string]*MasterEntry),
	}
}

// AddMaster appends a master entry, or returns the existing entry when the
// master B/L was already added.
func (m *UnifiedManifest) AddMaster(rec MasterRecord) (*MasterEntry, bool) {
	if m.index == nil {
		m.index = make(map[string]*MasterEntry)
	}
	if existing, ok := m.index[rec.NoMasterBL]; ok {
		return existing, false
	}
	entry := &MasterEntry{MasterRecord: rec}
	m.index[rec.NoMasterBL] = entry
	m.Masters = append(m.Masters, entry)
	return entry, true
}

// Master looks up a master entry by master B/L number.
func (m *UnifiedManifest) Master(noMasterBL string) (*MasterEntry, bool) {
	e, ok := m.index[noMasterBL]
	return e, ok
}

// Barangs returns pointers to every goods line in manifest order, so
// callers can update them in place.
func (m *UnifiedManifest) Barangs() []*BarangRecord {
	var out []*BarangRecord
	for _, master := range m.Masters {
		for _, house := range master.Houses {
			for i := range house.Barangs {
				out = append(out, &house.Barangs[i])
			}
		}
	}
	return out
}
