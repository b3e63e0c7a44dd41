// Package ceisa reads and writes the seven-sheet CEISA manifest workbook
// and groups its flat rows into a unified manifest.
package ceisa

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// ParseWorkbook reads every CEISA sheet from r. Sheets that are absent
// yield no rows and are listed in MissingSheets.
func ParseWorkbook(r io.Reader) (*domain.CeisaWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.IOError("failed to open workbook", err)
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	wb := &domain.CeisaWorkbook{}
	for _, name := range Sheets {
		if !present[name] {
			wb.MissingSheets = append(wb.MissingSheets, name)
		}
	}

	if present[SheetHeader] {
		rows, err := f.GetRows(SheetHeader)
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("failed to read sheet %q", SheetHeader), err)
		}
		if len(rows) > 1 && !blankRow(rows[1]) {
			var h domain.HeaderRecord
			fill(&h, headerColumns, rows[1])
			wb.Header = &h
		}
	}

	if wb.Masters, err = readSheet(f, present, SheetMaster, masterColumns); err != nil {
		return nil, err
	}
	if wb.Detils, err = readSheet(f, present, SheetDetil, detilColumns); err != nil {
		return nil, err
	}
	if wb.Barangs, err = readSheet(f, present, SheetBarang, barangColumns); err != nil {
		return nil, err
	}
	if wb.Dokumens, err = readSheet(f, present, SheetDokumen, dokumenColumns); err != nil {
		return nil, err
	}
	if wb.Kontainers, err = readSheet(f, present, SheetKontainer, kontainerColumns); err != nil {
		return nil, err
	}
	if wb.Respons, err = readSheet(f, present, SheetRespon, responColumns); err != nil {
		return nil, err
	}

	return wb, nil
}

// readSheet decodes data rows from row 2 until the first row whose first
// cell is empty.
func readSheet[T any](f *excelize.File, present map[string]bool, name string, cols []column[T]) ([]T, error) {
	if !present[name] {
		return nil, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to read sheet %q", name), err)
	}

	var out []T
	for i := 1; i < len(rows); i++ {
		if cell(rows[i], 0) == "" {
			break
		}
		var rec T
		fill(&rec, cols, rows[i])
		out = append(out, rec)
	}
	return out, nil
}

func fill[T any](rec *T, cols []column[T], row []string) {
	for i, c := range cols {
		c.set(rec, cell(row, i))
	}
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
