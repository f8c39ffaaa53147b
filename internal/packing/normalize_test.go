package packing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"":           0,
		"   ":        0,
		"abc":        0,
		"-3":         0,
		"2.9":        2,
		" 7 ":        7,
		"1e2":        100,
		"NaN":        0,
		"0":          0,
		"40000":      40000,
		"1000000":    MaxQuantity,
		"1000001":    MaxQuantity + 1,
		"2147483647": MaxQuantity + 1,
		"1e300":      MaxQuantity + 1,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseQuantity(in), "input %q", in)
	}
}

func TestNormalizeLabelFieldDefs_DropsPlaceholdersAndCaps(t *testing.T) {
	defs := []LabelFieldDef{
		{FieldID: "", Name: " Model "},
		{FieldID: "field_2", Name: "Campo 2"},
		{FieldID: "field_3", Name: "campo3"},
		{FieldID: "field_4", Name: "  "},
		{FieldID: "colour", Name: "Colour"},
		{FieldID: "colour", Name: "Duplicate"},
	}
	got := NormalizeLabelFieldDefs(defs)
	assert.Equal(t, []LabelFieldDef{
		{FieldID: "field_1", Name: "Model"},
		{FieldID: "colour", Name: "Colour"},
	}, got)

	many := make([]LabelFieldDef, 0, 15)
	for i := 0; i < 15; i++ {
		many = append(many, LabelFieldDef{FieldID: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("Name %d", i)})
	}
	assert.Len(t, NormalizeLabelFieldDefs(many), MaxLabelFields)
}

func TestNormalizeFieldValues(t *testing.T) {
	got := NormalizeFieldValues([]FieldValue{
		{FieldID: "field_1", Name: "Model", Value: " A1 "},
		{FieldID: "field_2", Name: "", Value: "dropped"},
		{FieldID: "", Name: "Colour", Value: "Red"},
	})
	assert.Equal(t, []FieldValue{
		{FieldID: "field_1", Name: "Model", Value: "A1"},
		{FieldID: "field_3", Name: "Colour", Value: "Red"},
	}, got)

	assert.NotNil(t, NormalizeFieldValues(nil))
}

func TestNormalizeReferenceItems_ProjectsOntoDefs(t *testing.T) {
	defs := []LabelFieldDef{{FieldID: "field_1", Name: "Model"}, {FieldID: "field_2", Name: "Colour"}}
	items := []ReferenceItem{
		{Fields: []FieldValue{
			{FieldID: "field_2", Name: "Old colour name", Value: "Red"},
			{FieldID: "gone", Name: "Removed", Value: "x"},
		}},
	}
	got := NormalizeReferenceItems(items, defs)
	require.Len(t, got, 1)
	assert.Equal(t, "item_1", got[0].ItemID)
	assert.Equal(t, []FieldValue{
		{FieldID: "field_1", Name: "Model", Value: ""},
		{FieldID: "field_2", Name: "Colour", Value: "Red"},
	}, got[0].Fields)
}

func TestExpandRows_ItemsOuterSizesInner(t *testing.T) {
	defs := []LabelFieldDef{{FieldID: "field_1", Name: "Model"}}
	items := []ReferenceItem{
		{ItemID: "a", Fields: []FieldValue{{FieldID: "field_1", Name: "Model", Value: "A"}}},
		{ItemID: "b", Fields: []FieldValue{{FieldID: "field_1", Name: "Model", Value: "B"}}},
	}
	seq := 0
	next := func() string { seq++; return fmt.Sprintf("r%d", seq) }

	rows := ExpandRows([]string{"S", "M", "L"}, defs, items, nil, next)
	require.Len(t, rows, 6)

	want := [][2]string{{"a", "S"}, {"a", "M"}, {"a", "L"}, {"b", "S"}, {"b", "M"}, {"b", "L"}}
	for i, w := range want {
		assert.Equal(t, w[0], rows[i].ItemID)
		assert.Equal(t, w[1], rows[i].Size)
		assert.Equal(t, fmt.Sprintf("r%d", i+1), rows[i].RowID)
	}
	assert.Equal(t, "B", rows[4].ItemFields[0].Value)
}

func TestExpandRows_DefaultItemHasEmptyFields(t *testing.T) {
	defs := []LabelFieldDef{{FieldID: "field_1", Name: "Model"}}
	seq := 0
	rows := ExpandRows([]string{"S"}, defs, nil, nil, func() string { seq++; return fmt.Sprint(seq) })

	require.Len(t, rows, 1)
	assert.Equal(t, DefaultItemID, rows[0].ItemID)
	assert.Equal(t, []FieldValue{{FieldID: "field_1", Name: "Model", Value: ""}}, rows[0].ItemFields)
}

func TestExpandRows_ExistingEntriesWin(t *testing.T) {
	seq := 0
	existing := []Entry{{Size: "XL", BoxFrom: 1, BoxTo: 1, UnitsPerBox: 4}}
	rows := ExpandRows([]string{"S", "M"}, nil, nil, existing, func() string { seq++; return fmt.Sprint(seq) })

	require.Len(t, rows, 1)
	assert.Equal(t, "XL", rows[0].Size)
	assert.Equal(t, "1", rows[0].RowID)
	assert.NotNil(t, rows[0].ItemFields)
}

func TestUsedBoxNumbers(t *testing.T) {
	rows := []Row{
		{RowID: "a", Entry: Entry{BoxFrom: 1, BoxTo: 3}},
		{RowID: "b", Entry: Entry{BoxFrom: 6, BoxTo: 5}},
		{RowID: "c", Entry: Entry{BoxFrom: 8, BoxTo: 8, RemainBox: 9}},
	}
	used := UsedBoxNumbers(rows)
	assert.Len(t, used, 4)
	for _, b := range []int{1, 2, 3, 8} {
		assert.Contains(t, used, b)
	}
}

func TestRangesOverlap_Inclusive(t *testing.T) {
	assert.True(t, RangesOverlap(1, 3, 3, 5))
	assert.False(t, RangesOverlap(1, 2, 3, 5))
	assert.True(t, RangesOverlap(2, 2, 1, 4))
}
