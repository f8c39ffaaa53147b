package infra

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vitorf997/packing-creator/internal/labels"
	"github.com/vitorf997/packing-creator/internal/packing"
)

const (
	allocationSheet = "Allocation"
	boxesSheet      = "Boxes"
)

// ExportXLSX writes a workbook with the allocation rows of a packing list and
// the per-box breakdown of its labels.
func ExportXLSX(sheet labels.Sheet, entries []packing.Entry, totalUnits int, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", allocationSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(boxesSheet); err != nil {
		return fmt.Errorf("xlsx: add sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2EFDA"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: bold style: %w", err)
	}

	// ── Allocation ───────────────────────────────────────────────────────────
	cols := make([]any, 0, len(sheet.FieldColumns)+7)
	for _, fc := range sheet.FieldColumns {
		cols = append(cols, fc.Name)
	}
	cols = append(cols, "Size", "Box from", "Box to", "Units per box", "Remainder box", "Remainder units", "Total")
	if err := writeRow(f, allocationSheet, 1, cols, header); err != nil {
		return err
	}
	for i, e := range entries {
		values := make(map[string]string, len(e.ItemFields))
		for _, fv := range e.ItemFields {
			values[fv.FieldID] = fv.Value
		}
		row := make([]any, 0, len(cols))
		for _, fc := range sheet.FieldColumns {
			row = append(row, values[fc.FieldID])
		}
		row = append(row, e.Size, e.BoxFrom, e.BoxTo, e.UnitsPerBox, e.RemainBox, e.RemainUnits, e.TotalPerSize)
		if err := writeRow(f, allocationSheet, i+2, row, 0); err != nil {
			return err
		}
	}
	summary := make([]any, len(cols))
	summary[0] = "Total units"
	summary[len(cols)-1] = totalUnits
	if err := writeRow(f, allocationSheet, len(entries)+3, summary, bold); err != nil {
		return err
	}

	// ── Boxes ────────────────────────────────────────────────────────────────
	boxCols := []any{"Box", "Remainder"}
	for _, fc := range sheet.FieldColumns {
		boxCols = append(boxCols, fc.Name)
	}
	for _, s := range sheet.SizeColumns {
		boxCols = append(boxCols, s)
	}
	if err := writeRow(f, boxesSheet, 1, boxCols, header); err != nil {
		return err
	}
	line := 2
	for _, l := range sheet.Labels {
		for _, r := range l.Rows {
			remainder := ""
			if l.IsRemainder {
				remainder = "yes"
			}
			row := []any{sheet.Footer(l), remainder}
			for _, fc := range sheet.FieldColumns {
				row = append(row, r.FieldValues[fc.FieldID])
			}
			for _, s := range sheet.SizeColumns {
				if q := r.QuantitiesBySize[s]; q > 0 {
					row = append(row, q)
				} else {
					row = append(row, nil)
				}
			}
			if err := writeRow(f, boxesSheet, line, row, 0); err != nil {
				return err
			}
			line++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// writeRow writes values from column A of the given 1-based row. A non-zero
// style is applied to the whole row.
func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("xlsx: %s row %d: %w", sheet, row, err)
	}
	if style == 0 || len(values) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	return f.SetCellStyle(sheet, start, end, style)
}
