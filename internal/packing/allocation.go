package packing

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// EventKind identifies an edit applied to an Allocation.
type EventKind string

const (
	EventSetField     EventKind = "set_field"
	EventSetItemField EventKind = "set_item_field"
	EventAddRow       EventKind = "add_row"
	EventRemoveRow    EventKind = "remove_row"
)

// Event is one user edit. Which fields are read depends on Kind.
type Event struct {
	Kind    EventKind `json:"kind"`
	RowID   string    `json:"row_id,omitempty"`
	Field   Field     `json:"field,omitempty"`
	Raw     string    `json:"raw,omitempty"`
	FieldID string    `json:"field_id,omitempty"`
	Value   string    `json:"value,omitempty"`
	ItemID  string    `json:"item_id,omitempty"`
	Size    string    `json:"size,omitempty"`
}

// State is the serializable form of an Allocation.
type State struct {
	Sizes     []string        `json:"sizes"`
	FieldDefs []LabelFieldDef `json:"field_defs"`
	Items     []ReferenceItem `json:"items"`
	Rows      []Row           `json:"rows"`
	Seq       int             `json:"seq"`
}

// Allocation is the row collection of one editing session. Every accepted
// event runs to completion and leaves totals consistent with the rows.
// An Allocation is not safe for concurrent use.
type Allocation struct {
	st State
}

// NewAllocation initializes an allocation. With existing entries the rows
// mirror them; otherwise rows are expanded from items and sizes. Stored
// totals are never trusted and are recomputed immediately.
func NewAllocation(sizes []string, defs []LabelFieldDef, items []ReferenceItem, existing []Entry) *Allocation {
	a := &Allocation{st: State{
		Sizes:     slices.Clone(sizes),
		FieldDefs: slices.Clone(defs),
		Items:     slices.Clone(items),
	}}
	a.st.Rows = ExpandRows(sizes, defs, items, existing, a.nextID)
	a.refresh()
	return a
}

// Restore rebuilds an allocation from a State produced by Snapshot.
func Restore(st State) *Allocation {
	a := &Allocation{st: st}
	a.refresh()
	return a
}

// Snapshot returns a deep copy of the allocation state.
func (a *Allocation) Snapshot() State {
	st := a.st
	st.Sizes = slices.Clone(a.st.Sizes)
	st.FieldDefs = slices.Clone(a.st.FieldDefs)
	st.Items = slices.Clone(a.st.Items)
	st.Rows = a.Rows()
	return st
}

func (a *Allocation) nextID() string {
	a.st.Seq++
	return fmt.Sprintf("row_%d", a.st.Seq)
}

// Rows returns a copy of the rows in display order.
func (a *Allocation) Rows() []Row {
	out := make([]Row, len(a.st.Rows))
	for i, r := range a.st.Rows {
		out[i] = cloneRow(r)
	}
	return out
}

// Row returns a copy of the row with the given id.
func (a *Allocation) Row(id string) (Row, bool) {
	i := a.index(id)
	if i < 0 {
		return Row{}, false
	}
	return cloneRow(a.st.Rows[i]), true
}

// Valid reports whether the row with the given id passes IsRowValid.
func (a *Allocation) Valid(id string) bool {
	i := a.index(id)
	return i >= 0 && IsRowValid(a.st.Rows[i], a.st.Rows)
}

// TotalUnits is the sum of the current row totals.
func (a *Allocation) TotalUnits() int {
	total := 0
	for _, r := range a.st.Rows {
		total += r.TotalPerSize
	}
	return total
}

// Apply runs one event. It returns false, leaving the allocation untouched,
// when the event refers to an unknown row, item or field.
func (a *Allocation) Apply(ev Event) bool {
	switch ev.Kind {
	case EventSetField:
		return a.SetField(ev.RowID, ev.Field, ev.Raw)
	case EventSetItemField:
		return a.SetItemFieldValue(ev.RowID, ev.FieldID, ev.Value)
	case EventAddRow:
		_, ok := a.AddRow(ev.ItemID, ev.Size)
		return ok
	case EventRemoveRow:
		return a.RemoveRow(ev.RowID)
	}
	return false
}

// SetField stores raw as typed and its coerced value on the row, then
// recomputes every total. A value that breaks the rule of its field class
// leaves the row at a total of zero.
func (a *Allocation) SetField(rowID string, f Field, raw string) bool {
	f, ok := ParseField(string(f))
	i := a.index(rowID)
	if i < 0 || !ok {
		return false
	}
	row := &a.st.Rows[i]
	if row.Raw == nil {
		row.Raw = make(map[Field]string)
	}
	row.Raw[f] = raw
	row.set(f, ParseQuantity(raw))

	a.refresh()
	if !IsFieldValid(f, *row, a.st.Rows) {
		row.TotalPerSize = 0
	}
	return true
}

// SetItemFieldValue changes the value of one label field of a row.
func (a *Allocation) SetItemFieldValue(rowID, fieldID, value string) bool {
	i := a.index(rowID)
	if i < 0 {
		return false
	}
	fields := a.st.Rows[i].ItemFields
	for j := range fields {
		if fields[j].FieldID == fieldID {
			fields[j].Value = value
			a.refresh()
			return true
		}
	}
	return false
}

// AddRow appends a zeroed row for the given reference item and size and
// returns its id. An empty itemID selects the implicit default item. The size
// must be one of the allocation's sizes.
func (a *Allocation) AddRow(itemID, size string) (string, bool) {
	size = strings.TrimSpace(size)
	if !slices.Contains(a.st.Sizes, size) {
		return "", false
	}
	it := ReferenceItem{ItemID: DefaultItemID}
	if itemID != "" && itemID != DefaultItemID {
		j := slices.IndexFunc(a.st.Items, func(x ReferenceItem) bool { return x.ItemID == itemID })
		if j < 0 {
			return "", false
		}
		it = a.st.Items[j]
	}
	row := newRow(a.nextID(), it, a.st.FieldDefs, size)
	a.st.Rows = append(a.st.Rows, row)
	a.refresh()
	return row.RowID, true
}

// RemoveRow deletes a row and re-validates the rest.
func (a *Allocation) RemoveRow(rowID string) bool {
	i := a.index(rowID)
	if i < 0 {
		return false
	}
	a.st.Rows = slices.Delete(a.st.Rows, i, i+1)
	a.refresh()
	return true
}

// Validate returns the submit-time messages for the current rows, including
// rows whose size is outside the allocation's sizes.
func (a *Allocation) Validate() map[string]RowErrors {
	errs := ValidateAll(a.st.Rows)
	for _, r := range a.st.Rows {
		if slices.Contains(a.st.Sizes, r.Size) {
			continue
		}
		e := errs[r.RowID]
		e.Size = MsgUnknownSize
		errs[r.RowID] = e
	}
	return errs
}

// Submit collapses the rows into persisted entries. It is refused when any
// row carries a message or fails IsRowValid.
func (a *Allocation) Submit() (Result, *Rejection) {
	errs := a.Validate()
	if len(errs) > 0 {
		return Result{}, &Rejection{Reason: "fix the highlighted rows before saving", Errors: errs}
	}
	for _, r := range a.st.Rows {
		if !IsRowValid(r, a.st.Rows) {
			return Result{}, &Rejection{Reason: "some rows are invalid", Errors: errs}
		}
	}

	res := Result{Entries: make([]Entry, 0, len(a.st.Rows))}
	for _, r := range a.st.Rows {
		e := r.Entry
		e.ItemFields = slices.Clone(e.ItemFields)
		e.TotalPerSize = ComputeRowTotal(r, a.st.Rows)
		res.TotalUnits += e.TotalPerSize
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func (a *Allocation) index(id string) int {
	return slices.IndexFunc(a.st.Rows, func(r Row) bool { return r.RowID == id })
}

func (a *Allocation) refresh() {
	for i := range a.st.Rows {
		a.st.Rows[i].TotalPerSize = ComputeRowTotal(a.st.Rows[i], a.st.Rows)
	}
}

func cloneRow(r Row) Row {
	r.ItemFields = slices.Clone(r.ItemFields)
	r.Raw = maps.Clone(r.Raw)
	return r
}
