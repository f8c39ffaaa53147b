package labels

import "strings"

// Layout defaults.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"

	DefaultBrandName      = "FERMIR"
	DefaultBrandBgColor   = "#8dc63f"
	DefaultBrandTextColor = "#ffffff"
	DefaultTopLeftField   = "model"
	DefaultTopRightField  = "po"
	DefaultEmptyRows      = 4
	MaxEmptyRows          = 8

	// FieldRefPrefix introduces a reference to a client label field, as in
	// "field:field_2".
	FieldRefPrefix = "field:"
)

// Layout is the print configuration of a label template.
type Layout struct {
	Orientation        string `json:"orientation"`
	BrandName          string `json:"brand_name"`
	BrandBgColor       string `json:"brand_bg_color"`
	BrandTextColor     string `json:"brand_text_color"`
	TopLeftField       string `json:"top_left_field"`
	TopRightField      string `json:"top_right_field"`
	EmptyRows          int    `json:"empty_rows"`
	ShowRemainderLabel bool   `json:"show_remainder_label"`
}

// LayoutPatch is a partially specified layout. Nil fields keep the default.
type LayoutPatch struct {
	Orientation        *string `json:"orientation"`
	BrandName          *string `json:"brand_name"`
	BrandBgColor       *string `json:"brand_bg_color"`
	BrandTextColor     *string `json:"brand_text_color"`
	TopLeftField       *string `json:"top_left_field"`
	TopRightField      *string `json:"top_right_field"`
	EmptyRows          *int    `json:"empty_rows"`
	ShowRemainderLabel *bool   `json:"show_remainder_label"`
}

// DefaultLayout is used when no template applies.
func DefaultLayout() Layout {
	return Layout{
		Orientation:        OrientationLandscape,
		BrandName:          DefaultBrandName,
		BrandBgColor:       DefaultBrandBgColor,
		BrandTextColor:     DefaultBrandTextColor,
		TopLeftField:       DefaultTopLeftField,
		TopRightField:      DefaultTopRightField,
		EmptyRows:          DefaultEmptyRows,
		ShowRemainderLabel: true,
	}
}

// MergeLayout applies p over DefaultLayout and normalizes the result.
func MergeLayout(p *LayoutPatch) Layout {
	l := DefaultLayout()
	if p == nil {
		return l
	}
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	str(&l.Orientation, p.Orientation)
	str(&l.BrandName, p.BrandName)
	str(&l.BrandBgColor, p.BrandBgColor)
	str(&l.BrandTextColor, p.BrandTextColor)
	str(&l.TopLeftField, p.TopLeftField)
	str(&l.TopRightField, p.TopRightField)
	if p.EmptyRows != nil {
		l.EmptyRows = *p.EmptyRows
	}
	if p.ShowRemainderLabel != nil {
		l.ShowRemainderLabel = *p.ShowRemainderLabel
	}
	return NormalizeLayout(l)
}

// NormalizeLayout trims every text setting, replaces blank ones with their
// default and clamps EmptyRows to [0, MaxEmptyRows]. Any orientation other
// than portrait is landscape.
func NormalizeLayout(l Layout) Layout {
	if strings.TrimSpace(l.Orientation) == OrientationPortrait {
		l.Orientation = OrientationPortrait
	} else {
		l.Orientation = OrientationLandscape
	}
	l.BrandName = orDefault(l.BrandName, DefaultBrandName)
	l.BrandBgColor = orDefault(l.BrandBgColor, DefaultBrandBgColor)
	l.BrandTextColor = orDefault(l.BrandTextColor, DefaultBrandTextColor)
	l.TopLeftField = orDefault(l.TopLeftField, DefaultTopLeftField)
	l.TopRightField = orDefault(l.TopRightField, DefaultTopRightField)
	l.EmptyRows = max(0, min(MaxEmptyRows, l.EmptyRows))
	return l
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// FieldSource holds what a layout field reference can resolve to.
type FieldSource struct {
	Model string
	PO    string
	// FirstItem maps field id to value for the first reference item.
	FirstItem map[string]string
	// Fallback is used for references that name nothing known.
	Fallback string
}

// ResolveField resolves a top-left or top-right layout reference.
func ResolveField(ref string, src FieldSource) string {
	if id, ok := strings.CutPrefix(ref, FieldRefPrefix); ok {
		return src.FirstItem[id]
	}
	switch ref {
	case "po":
		return src.PO
	case "model":
		return src.Model
	}
	return src.Fallback
}
