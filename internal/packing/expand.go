package packing

// DefaultItemID is the implicit reference item used when a packing list has
// none.
const DefaultItemID = "default"

// ExpandRows builds the initial row set of an allocation.
//
// When existing entries are given they are reproduced one to one, in order,
// with fresh row ids. Otherwise one zeroed row is created for every
// (item, size) pair, items outer and sizes inner. Without items a single
// implicit item whose fields are all empty is used.
func ExpandRows(sizes []string, defs []LabelFieldDef, items []ReferenceItem, existing []Entry, nextID func() string) []Row {
	if len(existing) > 0 {
		rows := make([]Row, 0, len(existing))
		for _, e := range existing {
			e.ItemFields = NormalizeFieldValues(e.ItemFields)
			rows = append(rows, Row{RowID: nextID(), Entry: e})
		}
		return rows
	}

	if len(items) == 0 {
		items = []ReferenceItem{{ItemID: DefaultItemID}}
	}
	rows := make([]Row, 0, len(items)*len(sizes))
	for _, it := range items {
		for _, size := range sizes {
			rows = append(rows, newRow(nextID(), it, defs, size))
		}
	}
	return rows
}

func newRow(id string, it ReferenceItem, defs []LabelFieldDef, size string) Row {
	return Row{
		RowID:  id,
		ItemID: it.ItemID,
		Entry: Entry{
			Size:       size,
			ItemFields: projectFields(it.Fields, defs),
		},
	}
}
