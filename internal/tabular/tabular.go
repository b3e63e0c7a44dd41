// Package tabular reads the first sheet of an uploaded .xlsx workbook, or
// a .csv file, as delimited text or as header-keyed records.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte("\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1")
	utf8BOM   = []byte("\xEF\xBB\xBF")
)

// Rows returns the cells of the first sheet. The format is taken from the
// leading bytes: zip containers are read as .xlsx, legacy OLE2 .xls files
// are rejected and anything else is read as CSV. Rows are padded to the
// width of the widest row.
func Rows(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(ole2Magic))

	var (
		rows [][]string
		err  error
	)
	switch {
	case bytes.HasPrefix(head, zipMagic):
		rows, err = workbookRows(br)
	case bytes.HasPrefix(head, ole2Magic):
		return nil, domain.InvalidRequestError("legacy .xls workbooks are not supported; save the file as .xlsx or .csv")
	default:
		rows, err = csvRows(br)
	}
	if err != nil {
		return nil, err
	}
	return pad(rows), nil
}

func workbookRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.IOError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.EmptyInputError("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	return rows, nil
}

// csvRows reads UTF-8 delimited text. The delimiter is ';' when the first
// line has more semicolons than commas, as spreadsheets export it in
// comma-decimal locales.
func csvRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.IOError("failed to read upload", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, domain.IOError("unrecognized file format: expected .xlsx or UTF-8 .csv", nil)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, domain.IOError("failed to parse csv", err)
	}
	return rows, nil
}

func pad(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// ExtractCSV converts the first sheet to comma-separated text.
func ExtractCSV(r io.Reader) (string, error) {
	rows, err := Rows(r)
	if err != nil {
		return "", err
	}
	if allBlank(rows) {
		return "", domain.EmptyInputError("file is empty or contains no data")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", domain.IOError("failed to encode csv", err)
	}
	return buf.String(), nil
}

// ExtractRecords maps each data row of the first sheet to its header row.
// Blank rows are skipped; unnamed columns are keyed "column_N".
func ExtractRecords(r io.Reader) ([]map[string]string, error) {
	rows, err := Rows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, domain.EmptyInputError("file is empty or contains no data")
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		header[i] = name
	}

	var records []map[string]string
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(map[string]string, len(header))
		for i, name := range header {
			rec[name] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, domain.EmptyInputError("file is empty or contains no data")
	}
	return records, nil
}

func allBlank(rows [][]string) bool {
	for _, row := range rows {
		if !blank(row) {
			return false
		}
	}
	return true
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
