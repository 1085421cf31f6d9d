package formpack

import (
	"fmt"
	"strconv"
	"strings"
)

// Submission is one raw data record belonging to a deployed source.
type Submission map[string]any

// Stream is a lazy, one-pass sequence of submissions. Next returns io.EOF
// when the sequence is exhausted.
type Stream interface {
	Next() (Submission, error)
}

// Fixed trailing columns appended after schema-derived columns, in order.
const (
	ColumnID               = "_id"
	ColumnUUID             = "_uuid"
	ColumnSubmissionTime   = "_submission_time"
	ColumnValidationStatus = "_validation_status"
	ColumnIndex            = "_index"
)

var copyColumns = []string{
	ColumnID,
	ColumnUUID,
	ColumnSubmissionTime,
	ColumnValidationStatus,
	ColumnIndex,
}

// Options configures an export produced from a pack.
type Options struct {
	// Lang is a concrete translation name, LangUntranslated, or LangRaw.
	// Empty selects the first available translation.
	Lang Lang
	// GroupSep separates hierarchical label components. Defaults to "/".
	GroupSep string
	// HierarchyInLabels prefixes labels with ancestor group labels.
	HierarchyInLabels bool
	// AllVersions includes fields from every deployed schema version
	// instead of only the latest.
	AllVersions bool
	// TagCols lists the tag categories rendered as extra header rows.
	TagCols []string
}

// Column is one output column: either a schema field, one choice of an
// expanded select_multiple field, or a fixed trailing copy column.
type Column struct {
	field  *Field
	choice *Choice
	copyOf string
}

// Export renders a pack's schema and submissions under one option set. Rows
// are produced lazily; the export itself holds only the column layout.
type Export struct {
	Title string
	Lang  Lang

	opts         Options
	translations []string
	fields       []*Field
	choices      map[string]ChoiceList
	columns      []Column
}

// Export builds an export from the pack for the given options.
func (p *Pack) Export(opts Options) *Export {
	if opts.GroupSep == "" {
		opts.GroupSep = "/"
	}

	fields, choices, translations := p.effectiveSchema(opts.AllVersions)

	lang := opts.Lang
	if lang == "" {
		if len(translations) > 0 {
			lang = Lang(translations[0])
		} else {
			lang = LangUntranslated
		}
	}

	e := &Export{
		Title:        p.Title,
		Lang:         lang,
		opts:         opts,
		translations: translations,
		fields:       fields,
		choices:      choices,
	}

	for _, f := range fields {
		e.columns = append(e.columns, Column{field: f})
		if f.Type == TypeSelectMultiple {
			list := choices[f.ListName]
			for i := range list {
				e.columns = append(e.columns, Column{field: f, choice: &list[i]})
			}
		}
	}
	for _, name := range copyColumns {
		e.columns = append(e.columns, Column{copyOf: name})
	}

	return e
}

// HeaderRow returns the row of column names, label-resolved for the export's
// language.
func (e *Export) HeaderRow() []string {
	row := make([]string, len(e.columns))
	for i, col := range e.columns {
		row[i] = e.header(col)
	}
	return row
}

// TagRows returns the metadata header rows, one per requested tag category,
// emitted before the column header row.
func (e *Export) TagRows() [][]string {
	rows := make([][]string, 0, len(e.opts.TagCols))
	for _, category := range e.opts.TagCols {
		row := make([]string, len(e.columns))
		for i, col := range e.columns {
			row[i] = tagValue(col, category)
		}
		rows = append(rows, row)
	}
	return rows
}

// IsNumericColumn reports whether the column at index i carries numeric
// values (the record id and sequence index trailing columns).
func (e *Export) IsNumericColumn(i int) bool {
	name := e.columns[i].copyOf
	return name == ColumnID || name == ColumnIndex
}

// FormatSubmission renders one submission as a row of string cells. index is
// the 1-based position of the record in the stream.
func (e *Export) FormatSubmission(sub Submission, index int) []string {
	row := make([]string, len(e.columns))
	for i, col := range e.columns {
		row[i] = e.value(col, sub, index)
	}
	return row
}

// Rows returns a lazy row iterator over the submission stream. The stream is
// consumed strictly once in order; no buffering or reordering.
func (e *Export) Rows(stream Stream) *Rows {
	return &Rows{export: e, stream: stream}
}

// Rows yields one formatted row per submission. Next returns io.EOF when the
// underlying stream is exhausted.
type Rows struct {
	export *Export
	stream Stream
	index  int
}

func (r *Rows) Next() ([]string, error) {
	sub, err := r.stream.Next()
	if err != nil {
		return nil, err
	}
	r.index++
	return r.export.FormatSubmission(sub, r.index), nil
}

func (e *Export) header(col Column) string {
	if col.copyOf != "" {
		return col.copyOf
	}

	base := e.fieldLabel(col.field)
	if e.opts.HierarchyInLabels {
		parts := make([]string, 0, len(col.field.Groups)+1)
		for _, g := range col.field.Groups {
			parts = append(parts, label(g.Labels, e.Lang, e.translations, g.Name))
		}
		parts = append(parts, base)
		base = strings.Join(parts, e.opts.GroupSep)
	}

	if col.choice != nil {
		return base + e.opts.GroupSep + e.choiceLabel(*col.choice)
	}
	return base
}

func (e *Export) fieldLabel(f *Field) string {
	return label(f.Labels, e.Lang, e.translations, f.Name)
}

func (e *Export) choiceLabel(c Choice) string {
	return label(c.Labels, e.Lang, e.translations, c.Name)
}

// tagValue extracts the value of a field's tag for the given category
// ("hxl:#affected" under category "hxl" yields "#affected"). Choice columns
// inherit their parent field's tags; copy columns are blank.
func tagValue(col Column, category string) string {
	if col.copyOf != "" {
		return ""
	}
	prefix := category + ":"
	for _, tag := range col.field.Tags {
		if strings.HasPrefix(tag, prefix) {
			return strings.TrimPrefix(tag, prefix)
		}
	}
	return ""
}

func (e *Export) value(col Column, sub Submission, index int) string {
	if col.copyOf != "" {
		return copyValue(col.copyOf, sub, index)
	}

	f := col.field
	raw, present := sub[f.Path()]
	if !present {
		return ""
	}
	value := cellString(raw)

	switch f.Type {
	case TypeSelectOne:
		if e.Lang == LangRaw {
			return value
		}
		return e.lookupChoiceLabel(f.ListName, value)

	case TypeSelectMultiple:
		selected := strings.Fields(value)
		if col.choice != nil {
			for _, name := range selected {
				if name == col.choice.Name {
					return "1"
				}
			}
			return "0"
		}
		if e.Lang == LangRaw {
			return value
		}
		out := make([]string, len(selected))
		for i, name := range selected {
			out[i] = e.lookupChoiceLabel(f.ListName, name)
		}
		return strings.Join(out, " ")

	default:
		return value
	}
}

func (e *Export) lookupChoiceLabel(listName, choiceName string) string {
	for _, c := range e.choices[listName] {
		if c.Name == choiceName {
			return e.choiceLabel(c)
		}
	}
	return choiceName
}

func copyValue(name string, sub Submission, index int) string {
	if name == ColumnIndex {
		return strconv.Itoa(index)
	}
	raw, ok := sub[name]
	if !ok || raw == nil {
		return ""
	}
	if name == ColumnValidationStatus {
		// Validation status arrives either as a plain string or as a
		// structured record whose label is what exports show
		if m, ok := raw.(map[string]any); ok {
			if l, ok := m["label"]; ok {
				return cellString(l)
			}
			return ""
		}
	}
	return cellString(raw)
}

// cellString renders a raw submission value as a cell. Integral floats (the
// usual fate of JSON numbers) drop their fractional part.
func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
