package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteManifest generates an Excel workbook listing every output page
// with its grid position, origin, and path count, plus a run-settings
// block. Useful as a checklist when printing and assembling.
func WriteManifest(path string, s Summary) error {
	if len(s.Pages) == 0 {
		return fmt.Errorf("no pages to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headers := []string{"Page", "Column", "Row", "Origin X (mm)", "Origin Y (mm)", "Paths", "Printed", "Trimmed"}
	for j, h := range headers {
		cellRef, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("failed to create cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, cellRef, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, page := range s.Pages {
		row := []interface{}{page.Label, page.Col + 1, page.Row + 1, page.X, page.Y, page.Fragments, "", ""}
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to create cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				return fmt.Errorf("failed to write page row: %w", err)
			}
		}
	}

	// Settings block below the table, one label/value pair per row
	settings := []struct {
		label string
		value interface{}
	}{
		{"Sheet format", string(s.Sheet.Size)},
		{"Sheet width (mm)", s.Sheet.Width},
		{"Sheet height (mm)", s.Sheet.Height},
		{"Margin (mm)", s.Sheet.Margin},
		{"Pages wide", s.Grid.NWide},
		{"Pages high", s.Grid.NHigh},
		{"Scale", s.Grid.Scale},
		{"Layers", s.Layers},
		{"Discarded intersections", s.Dropped},
	}

	base := len(s.Pages) + 3
	for i, item := range settings {
		labelRef, err := excelize.CoordinatesToCellName(1, base+i)
		if err != nil {
			return fmt.Errorf("failed to create cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, labelRef, item.label); err != nil {
			return fmt.Errorf("failed to write setting label: %w", err)
		}
		valueRef, err := excelize.CoordinatesToCellName(2, base+i)
		if err != nil {
			return fmt.Errorf("failed to create cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, valueRef, item.value); err != nil {
			return fmt.Errorf("failed to write setting value: %w", err)
		}
	}

	return f.SaveAs(path)
}
