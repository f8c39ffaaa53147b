package infra

// pdf.go: A6 box label rendering with go-pdf/fpdf.
// One page per box label, laid out as:
//   - two header boxes (layout top-left / top-right values)
//   - brand box (layout colours) next to the client name
//   - grid: one column per label field, one per size, plus empty rows
//   - large "n/total" footer
//   - remainder marking when enabled

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/vitorf997/packing-creator/internal/labels"
)

const (
	a6ShortMM   = 105.0
	a6LongMM    = 148.0
	labelMargin = 4.0
	gridRowH    = 6.0
	footerH     = 13.0
	noteH       = 4.0
)

// RenderLabelsPDF writes the sheet as an A6 PDF to w.
func RenderLabelsPDF(sheet labels.Sheet, w io.Writer) error {
	orientation := "L"
	if sheet.Layout.Orientation == labels.OrientationPortrait {
		orientation = "P"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: a6ShortMM, Ht: a6LongMM},
	})
	pdf.SetMargins(labelMargin, labelMargin, labelMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(sheet.Labels) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 10, "No box labels", "", 1, "C", false, 0, "")
	}
	for _, l := range sheet.Labels {
		drawLabel(pdf, tr, sheet, l)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render labels: %w", err)
	}
	return nil
}

// WriteLabelsPDF renders the sheet into storagePath/fileName and returns the
// file path.
func WriteLabelsPDF(sheet labels.Sheet, storagePath, fileName string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fileName)
	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderLabelsPDF(sheet, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func drawLabel(pdf *fpdf.Fpdf, tr func(string) string, sheet labels.Sheet, l labels.BoxLabel) {
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*labelMargin
	x := labelMargin
	const gap = 5.0

	// ── Header ───────────────────────────────────────────────────────────────
	half := (contentW - gap) / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, labelMargin)
	pdf.CellFormat(half, 9, tr(sheet.TopLeft), "1", 0, "C", false, 0, "")
	pdf.SetX(x + half + gap)
	pdf.CellFormat(half, 9, tr(sheet.TopRight), "1", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Brand + client ───────────────────────────────────────────────────────
	brandW := (contentW - gap) * 1.4 / 2.4
	br, bg, bb := hexRGB(sheet.Layout.BrandBgColor, 141, 198, 63)
	txR, txG, txB := hexRGB(sheet.Layout.BrandTextColor, 255, 255, 255)
	pdf.SetFillColor(br, bg, bb)
	pdf.SetTextColor(txR, txG, txB)
	pdf.SetFont("Helvetica", "B", 18)
	y := pdf.GetY()
	pdf.SetX(x)
	pdf.CellFormat(brandW, footerH, tr(sheet.Layout.BrandName), "1", 0, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(x+brandW+gap, y)
	pdf.CellFormat(contentW-brandW-gap, footerH, tr(sheet.ClientName), "1", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Grid ─────────────────────────────────────────────────────────────────
	bottom := pageH - labelMargin - footerH - noteH - 3
	cols := len(sheet.FieldColumns) + len(sheet.SizeColumns)
	if cols > 0 {
		colW := contentW / float64(cols)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetX(x)
		for _, f := range sheet.FieldColumns {
			pdf.CellFormat(colW, gridRowH, tr(f.Name), "1", 0, "C", false, 0, "")
		}
		for _, s := range sheet.SizeColumns {
			pdf.CellFormat(colW, gridRowH, tr(s), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		for _, row := range l.Rows {
			if pdf.GetY()+gridRowH > bottom {
				break
			}
			pdf.SetX(x)
			pdf.SetFont("Helvetica", "", 8)
			for _, f := range sheet.FieldColumns {
				pdf.CellFormat(colW, gridRowH, tr(row.FieldValues[f.FieldID]), "1", 0, "C", false, 0, "")
			}
			pdf.SetFont("Helvetica", "B", 11)
			pdf.SetTextColor(208, 2, 27)
			for _, s := range sheet.SizeColumns {
				pdf.CellFormat(colW, gridRowH, labels.Cell(row, s), "1", 0, "C", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(-1)
		}
		for i := 0; i < sheet.Layout.EmptyRows && pdf.GetY()+gridRowH <= bottom; i++ {
			pdf.SetX(x)
			for c := 0; c < cols; c++ {
				pdf.CellFormat(colW, gridRowH, "", "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetXY(x, pageH-labelMargin-footerH-noteH)
	pdf.SetFont("Helvetica", "B", 34)
	pdf.CellFormat(contentW, footerH, sheet.Footer(l), "1", 1, "C", false, 0, "")
	if sheet.RemainderNote(l) {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(102, 102, 102)
		pdf.CellFormat(contentW, noteH, "Remainder box", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

// hexRGB parses "#rrggbb" or "#rgb", falling back to the given colour.
func hexRGB(s string, r, g, b int) (int, int, int) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return r, g, b
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return r, g, b
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
