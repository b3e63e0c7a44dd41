package ceisa

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// Export writes m as a CEISA workbook. Every sheet is written, with an
// upper-case bold header row, even when it has no data rows.
func Export(w io.Writer, m *domain.UnifiedManifest) error {
	f, err := render(m)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return domain.IOError("failed to write workbook", err)
	}
	return nil
}

// ExportFile writes m as a CEISA workbook at path.
func ExportFile(path string, m *domain.UnifiedManifest) error {
	f, err := render(m)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return domain.IOError(fmt.Sprintf("failed to save workbook %s", path), err)
	}
	return nil
}

func render(m *domain.UnifiedManifest) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetHeader); err != nil {
		f.Close()
		return nil, domain.IOError("failed to name header sheet", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, domain.IOError(fmt.Sprintf("failed to add sheet %q", name), err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, domain.IOError("failed to create header style", err)
	}

	var (
		headers    []*domain.HeaderRecord
		masters    []*domain.MasterRecord
		detils     []*domain.DetilRecord
		barangs    = m.Barangs()
		dokumens   []*domain.DokumenRecord
		kontainers []*domain.KontainerRecord
		respons    []*domain.ResponRecord
	)
	if m.Header != nil {
		headers = append(headers, m.Header)
	}
	for _, master := range m.Masters {
		masters = append(masters, &master.MasterRecord)
		for _, house := range master.Houses {
			detils = append(detils, &house.DetilRecord)
			for i := range house.Dokumens {
				dokumens = append(dokumens, &house.Dokumens[i])
			}
			for i := range house.Containers {
				kontainers = append(kontainers, &house.Containers[i])
			}
		}
	}
	for i := range m.Respons {
		respons = append(respons, &m.Respons[i])
	}

	writes := []error{
		writeSheet(f, SheetHeader, headerColumns, headers, bold),
		writeSheet(f, SheetMaster, masterColumns, masters, bold),
		writeSheet(f, SheetDetil, detilColumns, detils, bold),
		writeSheet(f, SheetBarang, barangColumns, barangs, bold),
		writeSheet(f, SheetDokumen, dokumenColumns, dokumens, bold),
		writeSheet(f, SheetKontainer, kontainerColumns, kontainers, bold),
		writeSheet(f, SheetRespon, responColumns, respons, bold),
	}
	for _, err := range writes {
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet[T any](f *excelize.File, name string, cols []column[T], recs []*T, style int) error {
	header := make([]interface{}, len(cols))
	for i, n := range names(cols) {
		header[i] = n
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return domain.IOError(fmt.Sprintf("failed to write %q header", name), err)
	}

	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return domain.IOError(fmt.Sprintf("failed to style %q header", name), err)
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return domain.IOError(fmt.Sprintf("failed to style %q header", name), err)
	}

	for i, rec := range recs {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c.get(rec)
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return domain.IOError(fmt.Sprintf("failed to address %q row %d", name, i+2), err)
		}
		if err := f.SetSheetRow(name, start, &row); err != nil {
			return domain.IOError(fmt.Sprintf("failed to write %q row %d", name, i+2), err)
		}
	}
	return nil
}
