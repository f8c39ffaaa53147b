// Package packing implements the box-allocation engine of a packing list: row
// expansion from a size matrix and reference items, per-edit validation of box
// ranges, submit-time error reporting and unit totals.
//
// Nothing in this package performs I/O or returns errors. Invalid numeric state
// is representable and surfaces as row validity, zero totals and, at submit
// time, as a map of per-field messages.
package packing

// MaxLabelFields is the maximum number of label fields a client can define.
const MaxLabelFields = 12

// LabelFieldDef is one dynamic attribute a client prints on its box labels.
type LabelFieldDef struct {
	FieldID string `json:"field_id"`
	Name    string `json:"name"`
}

// FieldValue is the value of one label field on a reference item or row.
type FieldValue struct {
	FieldID string `json:"field_id"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

// ReferenceItem is one concrete combination of label field values (e.g.
// Model=A123, Colour=Red).
type ReferenceItem struct {
	ItemID string       `json:"item_id"`
	Fields []FieldValue `json:"fields"`
}

// Entry is an allocation row as persisted on a packing list.
type Entry struct {
	Size         string       `json:"size"`
	ItemFields   []FieldValue `json:"item_fields"`
	BoxFrom      int          `json:"box_from"`
	BoxTo        int          `json:"box_to"`
	UnitsPerBox  int          `json:"units_per_box"`
	RemainBox    int          `json:"remain_box"`
	RemainUnits  int          `json:"remain_units"`
	TotalPerSize int          `json:"total_per_size"`
}

// Row is an Entry being edited. RowID is ephemeral and only stable for the
// lifetime of one Allocation; several rows may share a size.
type Row struct {
	RowID  string `json:"row_id"`
	ItemID string `json:"item_id"`
	Entry
	// Raw keeps the last text typed for each numeric field so that clients can
	// redisplay exactly what the user entered next to the coerced value.
	Raw map[Field]string `json:"raw,omitempty"`
}

// Field names one numeric property of a row.
type Field string

const (
	FieldBoxFrom     Field = "box_from"
	FieldBoxTo       Field = "box_to"
	FieldUnitsPerBox Field = "units_per_box"
	FieldRemainBox   Field = "remain_box"
	FieldRemainUnits Field = "remain_units"
)

// ParseField maps a wire name to a Field. Both snake_case and the camelCase
// names used by older clients are accepted.
func ParseField(name string) (Field, bool) {
	switch name {
	case "box_from", "boxFrom":
		return FieldBoxFrom, true
	case "box_to", "boxTo":
		return FieldBoxTo, true
	case "units_per_box", "unitsPerBox":
		return FieldUnitsPerBox, true
	case "remain_box", "remainBox":
		return FieldRemainBox, true
	case "remain_units", "remainUnits":
		return FieldRemainUnits, true
	}
	return "", false
}

// get returns the integer value of f on e.
func (e *Entry) get(f Field) int {
	switch f {
	case FieldBoxFrom:
		return e.BoxFrom
	case FieldBoxTo:
		return e.BoxTo
	case FieldUnitsPerBox:
		return e.UnitsPerBox
	case FieldRemainBox:
		return e.RemainBox
	case FieldRemainUnits:
		return e.RemainUnits
	}
	return 0
}

// set replaces the integer value of f on e.
func (e *Entry) set(f Field, v int) {
	switch f {
	case FieldBoxFrom:
		e.BoxFrom = v
	case FieldBoxTo:
		e.BoxTo = v
	case FieldUnitsPerBox:
		e.UnitsPerBox = v
	case FieldRemainBox:
		e.RemainBox = v
	case FieldRemainUnits:
		e.RemainUnits = v
	}
}

// RowErrors holds the submit-time message for each offending field of a row.
type RowErrors struct {
	Size        string `json:"size,omitempty"`
	BoxRange    string `json:"box_range,omitempty"`
	UnitsPerBox string `json:"units_per_box,omitempty"`
	RemainBox   string `json:"remain_box,omitempty"`
	RemainUnits string `json:"remain_units,omitempty"`
}

// Empty reports whether no field carries a message.
func (e RowErrors) Empty() bool {
	return e.Size == "" && e.BoxRange == "" && e.UnitsPerBox == "" && e.RemainBox == "" && e.RemainUnits == ""
}

// Upper bounds of box numbers and per-box quantities. Rows beyond them are
// invalid, which keeps every total and box loop bounded.
const (
	MaxBoxNumber = 99_999
	MaxQuantity  = 1_000_000
)

// Submit-time messages.
const (
	MsgInvalidRange     = "invalid box range"
	MsgOverlappingRange = "box range overlaps another row"
	MsgNegativeRange    = "box numbers must not be negative"
	MsgUnitsRequired    = "units per box required"
	MsgNegativeUnits    = "units per box must not be negative"
	MsgRemainBoxMissing = "remainder box required"
	MsgNegativeRemain   = "remainder values must not be negative"
	MsgRemainBoxInUse   = "remainder box already in use"
	MsgBoxTooLarge      = "box number too large"
	MsgQuantityTooLarge = "quantity too large"
	MsgUnknownSize      = "size is not part of the size matrix"
)

// Result is what an accepted submit collapses the rows into.
type Result struct {
	Entries    []Entry `json:"entries"`
	TotalUnits int     `json:"total_units"`
}

// Rejection explains why a submit was refused. Errors is keyed by row id.
type Rejection struct {
	Reason string               `json:"reason"`
	Errors map[string]RowErrors `json:"errors"`
}
