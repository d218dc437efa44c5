// Extracts typed scalar values from Notion property values.

package notion

import (
	"strconv"
	"strings"
)

// FieldKind identifies which member of a Field holds the extracted value.
type FieldKind int

const (
	// FieldAbsent means the property carried no usable value.
	FieldAbsent FieldKind = iota
	// FieldText is trimmed plain text from title, rich_text or a string formula.
	FieldText
	// FieldNumber is a number, a numeric rollup or a numeric formula.
	FieldNumber
	// FieldIDs is the ordered list of related page IDs.
	FieldIDs
	// FieldLabel is a status or select option name.
	FieldLabel
	// FieldLabels is the list of multi-select option names.
	FieldLabels
)

func (k FieldKind) String() string {
	switch k {
	case FieldAbsent:
		return "absent"
	case FieldText:
		return "text"
	case FieldNumber:
		return "number"
	case FieldIDs:
		return "ids"
	case FieldLabel:
		return "label"
	case FieldLabels:
		return "labels"
	default:
		return "FieldKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is the value extracted from one named property.
//
// Malformed or unsupported shapes yield Kind == FieldAbsent rather than an
// error, so one odd property never fails the whole page.
type Field struct {
	Name   string
	Kind   FieldKind
	Text   string // FieldText, FieldLabel
	Number float64
	IDs    []string
	Labels []string
}

// Present reports whether the field carries a value.
func (f *Field) Present() bool {
	return f.Kind != FieldAbsent
}

// Int returns the field as an integer.
//
// Numbers are truncated toward zero. Text is accepted when it is made of
// ASCII digits only, which is how a rollup of a numbered title arrives.
func (f *Field) Int() (int, bool) {
	switch f.Kind {
	case FieldNumber:
		return int(f.Number), true
	case FieldText:
		if !isDigits(f.Text) {
			return 0, false
		}
		n, err := strconv.Atoi(f.Text)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Extract reads the value of the property called name.
//
// Dispatch is on pv.Type only: a property tagged "rollup" is always read as a
// rollup, even when empty. For rollup arrays only the first element is
// considered.
func Extract(name string, pv *PropertyValue) Field {
	f := Field{Name: name}
	if pv == nil {
		return f
	}
	switch pv.Type {
	case "rollup":
		extractRollup(&f, pv.Rollup)
	case "formula":
		extractFormula(&f, pv.Formula)
	case "relation":
		if len(pv.Relation) == 0 {
			return f
		}
		ids := make([]string, 0, len(pv.Relation))
		for i := range pv.Relation {
			if pv.Relation[i].ID != "" {
				ids = append(ids, pv.Relation[i].ID)
			}
		}
		if len(ids) > 0 {
			f.Kind = FieldIDs
			f.IDs = ids
		}
	case "status":
		if pv.Status != nil && pv.Status.Name != "" {
			f.Kind = FieldLabel
			f.Text = pv.Status.Name
		}
	case "select":
		if pv.Select != nil && pv.Select.Name != "" {
			f.Kind = FieldLabel
			f.Text = pv.Select.Name
		}
	case "multi_select":
		var labels []string
		for i := range pv.MultiSelect {
			if pv.MultiSelect[i].Name != "" {
				labels = append(labels, pv.MultiSelect[i].Name)
			}
		}
		if len(labels) > 0 {
			f.Kind = FieldLabels
			f.Labels = labels
		}
	default:
		extractScalar(&f, pv)
	}
	return f
}

// extractScalar handles the types that may also appear as a rollup array
// element: number, title and rich_text.
func extractScalar(f *Field, pv *PropertyValue) {
	switch pv.Type {
	case "number":
		if pv.Number != nil {
			f.Kind = FieldNumber
			f.Number = *pv.Number
		}
	case "title":
		setText(f, RichTextToPlain(pv.Title))
	case "rich_text":
		setText(f, RichTextToPlain(pv.RichText))
	}
}

func extractRollup(f *Field, r *RollupValue) {
	if r == nil {
		return
	}
	switch r.Type {
	case "array":
		if len(r.Array) == 0 {
			return
		}
		// TODO(maruel): Confirm with the database owner whether these rollups
		// can legitimately hold more than one value; everything after the
		// first element is dropped.
		extractScalar(f, &r.Array[0])
	case "number":
		if r.Number != nil {
			f.Kind = FieldNumber
			f.Number = *r.Number
		}
	}
}

func extractFormula(f *Field, v *FormulaValue) {
	if v == nil {
		return
	}
	switch v.Type {
	case "string":
		if v.String != nil {
			setText(f, *v.String)
		}
	case "number":
		if v.Number != nil {
			f.Kind = FieldNumber
			f.Number = *v.Number
		}
	}
}

// setText stores s trimmed; whitespace-only text is absent.
func setText(f *Field, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	f.Kind = FieldText
	f.Text = s
}

// RichTextToPlain concatenates the plain text of all runs in order.
func RichTextToPlain(rt []RichText) string {
	var b strings.Builder
	for i := range rt {
		b.WriteString(rt[i].PlainText)
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
