package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/shpitdev/gym-hunter/internal/pipeline"
)

// DefaultSheet names the single worksheet of an XLSX export.
const DefaultSheet = "Leads"

// XLSX writes one worksheet with a header row followed by one row per record.
type XLSX struct {
	Sheet string
}

func (XLSX) Ext() string { return "xlsx" }

func (x XLSX) Export(w io.Writer, records []pipeline.Record) error {
	sheet := x.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := setRow(f, sheet, 1, Header()); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, sheet, i+2, row(r)); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("row %d: %w", n, err)
	}
	return nil
}
