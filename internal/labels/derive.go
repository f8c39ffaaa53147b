// Package labels turns the allocation entries of a packing list into one
// label per physical box and resolves the layout those labels are printed
// with.
package labels

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// LabelRow is one line of a box label: a reference item and the quantity of
// each size packed in the box for it.
type LabelRow struct {
	FieldValues      map[string]string `json:"field_values"`
	QuantitiesBySize map[string]int    `json:"quantities_by_size"`
}

// BoxLabel is the content of one physical box.
type BoxLabel struct {
	BoxNumber   int        `json:"box_number"`
	Rows        []LabelRow `json:"rows"`
	IsRemainder bool       `json:"is_remainder"`
}

type boxAcc struct {
	label BoxLabel
	index map[string]int
}

func (b *boxAcc) add(key string, values map[string]string, size string, qty int) {
	i, ok := b.index[key]
	if !ok {
		i = len(b.label.Rows)
		b.index[key] = i
		b.label.Rows = append(b.label.Rows, LabelRow{FieldValues: values, QuantitiesBySize: map[string]int{}})
	}
	b.label.Rows[i].QuantitiesBySize[size] += qty
}

// Derive builds the box labels of a packing list. Entries are not
// re-validated: any entry with a usable main range contributes UnitsPerBox to
// every box of it, and any entry with a remainder contributes RemainUnits to
// its remainder box, which is then marked as a remainder box. Box numbers
// above packing.MaxBoxNumber are ignored. Entries that
// share the same label field values are merged into one row per box.
// The result is ordered by box number.
func Derive(entries []packing.Entry) []BoxLabel {
	boxes := make(map[int]*boxAcc)
	ensure := func(n int) *boxAcc {
		b, ok := boxes[n]
		if !ok {
			b = &boxAcc{label: BoxLabel{BoxNumber: n}, index: map[string]int{}}
			boxes[n] = b
		}
		return b
	}

	for _, e := range entries {
		size := strings.TrimSpace(e.Size)
		if size == "" {
			continue
		}
		fields := packing.NormalizeFieldValues(e.ItemFields)
		key := rowKey(fields)

		if e.BoxFrom > 0 && e.BoxTo >= e.BoxFrom && e.BoxTo <= packing.MaxBoxNumber && e.UnitsPerBox > 0 {
			for n := e.BoxFrom; n <= e.BoxTo; n++ {
				ensure(n).add(key, fieldMap(fields), size, e.UnitsPerBox)
			}
		}
		if e.RemainBox > 0 && e.RemainBox <= packing.MaxBoxNumber && e.RemainUnits > 0 {
			b := ensure(e.RemainBox)
			b.add(key, fieldMap(fields), size, e.RemainUnits)
			b.label.IsRemainder = true
		}
	}

	out := make([]BoxLabel, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.label)
	}
	slices.SortFunc(out, func(a, b BoxLabel) int { return cmp.Compare(a.BoxNumber, b.BoxNumber) })
	return out
}

// TotalBoxes is the highest box number among labels, 0 when there are none.
func TotalBoxes(labels []BoxLabel) int {
	total := 0
	for _, l := range labels {
		total = max(total, l.BoxNumber)
	}
	return total
}

// rowKey identifies a reference item by its sorted (field id, value) pairs.
// Each component is length-prefixed so that no value can forge another key.
func rowKey(fields []packing.FieldValue) string {
	pairs := slices.Clone(fields)
	slices.SortFunc(pairs, func(a, b packing.FieldValue) int {
		if c := cmp.Compare(a.FieldID, b.FieldID); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	var sb strings.Builder
	for _, p := range pairs {
		for _, s := range [2]string{p.FieldID, p.Value} {
			sb.WriteString(strconv.Itoa(len(s)))
			sb.WriteByte(':')
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func fieldMap(fields []packing.FieldValue) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.FieldID] = f.Value
	}
	return m
}
