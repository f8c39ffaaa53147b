package labels

import (
	"fmt"
	"strconv"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// SheetInput is everything known about a packing list at print time.
type SheetInput struct {
	ClientName string
	PO         string
	Model      string
	Sizes      []string
	FieldDefs  []packing.LabelFieldDef
	Items      []packing.ReferenceItem
	Entries    []packing.Entry
	Layout     Layout
}

// Sheet is a print-ready set of box labels.
type Sheet struct {
	ClientName   string                  `json:"client_name"`
	PO           string                  `json:"po"`
	Model        string                  `json:"model"`
	TopLeft      string                  `json:"top_left"`
	TopRight     string                  `json:"top_right"`
	Layout       Layout                  `json:"layout"`
	FieldColumns []packing.LabelFieldDef `json:"field_columns"`
	SizeColumns  []string                `json:"size_columns"`
	Labels       []BoxLabel              `json:"labels"`
	TotalBoxes   int                     `json:"total_boxes"`
}

// BuildSheet derives the labels of in and resolves the header values of the
// layout against its first reference item.
func BuildSheet(in SheetInput) Sheet {
	defs := packing.NormalizeLabelFieldDefs(in.FieldDefs)
	items := packing.NormalizeReferenceItems(in.Items, defs)

	first := map[string]string{}
	if len(items) > 0 {
		for _, f := range items[0].Fields {
			first[f.FieldID] = f.Value
		}
	}
	fallback := func(slot int) string {
		if slot < len(defs) {
			return first[defs[slot].FieldID]
		}
		return ""
	}
	src := FieldSource{Model: in.Model, PO: in.PO, FirstItem: first}

	layout := NormalizeLayout(in.Layout)
	labels := Derive(in.Entries)

	left, right := src, src
	left.Fallback = fallback(0)
	right.Fallback = fallback(1)

	sizes := in.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	return Sheet{
		ClientName:   in.ClientName,
		PO:           in.PO,
		Model:        in.Model,
		TopLeft:      ResolveField(layout.TopLeftField, left),
		TopRight:     ResolveField(layout.TopRightField, right),
		Layout:       layout,
		FieldColumns: defs,
		SizeColumns:  sizes,
		Labels:       labels,
		TotalBoxes:   TotalBoxes(labels),
	}
}

// Footer is the "n/total" line printed at the bottom of a label.
func (s Sheet) Footer(l BoxLabel) string {
	return fmt.Sprintf("%d/%d", l.BoxNumber, s.TotalBoxes)
}

// Cell is the text printed for size in row; zero quantities are blank.
func Cell(row LabelRow, size string) string {
	if q := row.QuantitiesBySize[size]; q > 0 {
		return strconv.Itoa(q)
	}
	return ""
}

// RemainderNote reports whether the remainder marking is printed on l.
func (s Sheet) RemainderNote(l BoxLabel) bool {
	return s.Layout.ShowRemainderLabel && l.IsRemainder
}
