// Package prompt renders the model instructions used by the pipelines.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

const (
	// HSDescriptionLimit bounds the description sent in a single lookup.
	HSDescriptionLimit = 80
	// BatchDescriptionLimit bounds each description in a batch lookup.
	BatchDescriptionLimit = 100
)

const normalizeTemplate = `Anda adalah asisten untuk membersihkan dan menstrukturkan data manifes kargo.

TUGAS ANDA:
1. Ambil data CSV mentah di bawah ini
2. Normalisasikan berdasarkan kolom standar yang diberikan
3. Ekstrak item_no dari urutan baris (jika tidak ada, buat berurutan dari 1)
4. Pastikan setiap kolom terisi sesuai standar (jika kosong, gunakan null atau string kosong)
5. Jika ada data gabungan (misalnya: nama + alamat + NPWP dalam satu kolom), pisahkan secara logis ke kolom yang sesuai
6. Bersihkan whitespace, karakter tidak valid, dan format data yang tidak konsisten
7. Hasil akhir wajib berupa JSON array yang valid
8. JANGAN menambahkan komentar, penjelasan, atau markdown formatting - HANYA JSON valid
9. Jumlah object di output HARUS sama dengan jumlah baris data

KOLOM STANDAR:
%s

%s
DATA CSV MENTAH:
%s

ATURAN OUTPUT:
- Response WAJIB berupa JSON array murni
- Setiap item adalah object dengan kolom standar di atas
- item_no harus berupa angka dan berurutan
- Jangan gunakan markdown code blocks atau formatting apapun
- Jangan tambahkan teks penjelasan
- Format angka dengan benar (quantity, price, weight, volume sebagai number)
- Format string dengan konsisten (trim whitespace)

CONTOH FORMAT OUTPUT:
[
  {
    "item_no": 1,
    "description": "Barang Contoh",
    "hs_code": "1234567890",
    "quantity": 100,
    "unit": "PCS",
    "unit_price": 50.00,
    "total_price": 5000.00,
    "weight": 250.5,
    "volume": 1.5,
    "country_of_origin": "Indonesia",
    "bl_number": null
  }
]

Output Anda (hanya JSON array):`

// Build renders the normalization prompt. An empty column list falls back
// to domain.DefaultColumns. The output is a pure function of its inputs.
func Build(columns []string, rawTable, userInstruction string) string {
	if len(columns) == 0 {
		columns = domain.DefaultColumns
	}

	instruction := ""
	if s := strings.TrimSpace(userInstruction); s != "" {
		instruction = "INSTRUKSI TAMBAHAN USER:\n" + s + "\n"
	}

	return fmt.Sprintf(normalizeTemplate, strings.Join(columns, ", "), instruction, rawTable)
}

// HSCode renders a single-item tariff lookup.
func HSCode(description string) string {
	desc := truncate(description, HSDescriptionLimit)
	return "What is the 10-digit HS tariff code for: " + desc + `

CRITICAL: Reply with ONLY the 10-digit number. No text, no explanation, just numbers.
Example correct format: 8421290000`
}

// HSCodeBatch renders one lookup for many descriptions. Entries are
// numbered from 1 in the order given; the reply is expected to reference
// those numbers in its "index" field.
func HSCodeBatch(descriptions []string) string {
	var b strings.Builder
	b.WriteString("Generate 10-digit HS tariff codes for these products (Indonesia format).\n\nProducts:\n")
	for i, d := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(d, BatchDescriptionLimit))
	}
	b.WriteString(`
CRITICAL OUTPUT - Reply ONLY with valid JSON array, no explanation:
[
  {"index": 1, "hs_code": "8421290000"},
  {"index": 2, "hs_code": "8409991000"}
]

Rules:
- Exactly 10 digits
- Valid HS code structure
- NO text outside JSON`)
	return b.String()
}

// truncate keeps at most n runes of s, trimmed.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}
