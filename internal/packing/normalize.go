package packing

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderName matches the auto-generated names ("Campo 1", "campo2") the
// label field editor starts with. They are never meaningful.
var placeholderName = regexp.MustCompile(`(?i)^campo\s*\d+$`)

func meaningfulName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !placeholderName.MatchString(name)
}

// NormalizeLabelFieldDefs cleans a client's label field definitions: names are
// trimmed, empty or placeholder names dropped, missing ids filled positionally
// and duplicates removed. At most MaxLabelFields definitions are kept.
func NormalizeLabelFieldDefs(defs []LabelFieldDef) []LabelFieldDef {
	out := make([]LabelFieldDef, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		id := strings.TrimSpace(d.FieldID)
		if id == "" {
			id = fmt.Sprintf("field_%d", i+1)
		}
		name := strings.TrimSpace(d.Name)
		if !meaningfulName(name) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, LabelFieldDef{FieldID: id, Name: name})
		if len(out) == MaxLabelFields {
			break
		}
	}
	return out
}

// NormalizeFieldValues trims every value and drops those without a name.
// The result is never nil.
func NormalizeFieldValues(values []FieldValue) []FieldValue {
	out := make([]FieldValue, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		id := strings.TrimSpace(v.FieldID)
		if id == "" {
			id = fmt.Sprintf("field_%d", i+1)
		}
		name := strings.TrimSpace(v.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, FieldValue{FieldID: id, Name: name, Value: strings.TrimSpace(v.Value)})
		if len(out) == MaxLabelFields {
			break
		}
	}
	return out
}

// NormalizeReferenceItems projects every item onto defs: fields unknown to the
// client are dropped, missing ones default to "" and names follow the
// definition. Items without an id get item_<n>.
func NormalizeReferenceItems(items []ReferenceItem, defs []LabelFieldDef) []ReferenceItem {
	out := make([]ReferenceItem, 0, len(items))
	for i, it := range items {
		id := strings.TrimSpace(it.ItemID)
		if id == "" {
			id = fmt.Sprintf("item_%d", i+1)
		}
		out = append(out, ReferenceItem{ItemID: id, Fields: projectFields(it.Fields, defs)})
	}
	return out
}

// projectFields lays values out in the order of defs.
func projectFields(values []FieldValue, defs []LabelFieldDef) []FieldValue {
	byID := make(map[string]string, len(values))
	for _, v := range NormalizeFieldValues(values) {
		byID[v.FieldID] = v.Value
	}
	out := make([]FieldValue, 0, len(defs))
	for _, d := range defs {
		out = append(out, FieldValue{FieldID: d.FieldID, Name: d.Name, Value: byID[d.FieldID]})
	}
	return out
}
