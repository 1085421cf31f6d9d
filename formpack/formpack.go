// Package formpack turns a source's question/answer schema plus raw
// submissions into typed, labeled rows for export. It models deployed schema
// versions, translations, choice lists, and group hierarchy, and produces
// lazy row sequences the export encoders consume one pass at a time.
package formpack

import (
	"strings"

	"github.com/skubi6/kpi/errors"
)

// Lang selects the label language for headers and response values. Besides a
// concrete translation name, two sentinels are accepted: LangUntranslated for
// the default/only label language and LangRaw for raw field and choice names
// instead of labels.
type Lang string

const (
	LangUntranslated Lang = "_default"
	LangRaw          Lang = "_xml"
)

// Field types with special export behavior. Anything else is exported as-is.
const (
	TypeSelectOne      = "select_one"
	TypeSelectMultiple = "select_multiple"
)

// LabelMap holds a field's (or choice's, or group's) label per translation.
type LabelMap map[string]string

// Group is one ancestor group of a field.
type Group struct {
	Name   string
	Labels LabelMap
}

// Field is one question in a schema version.
type Field struct {
	Name     string
	Type     string
	Labels   LabelMap
	Tags     []string // e.g. "hxl:#affected"
	ListName string   // choice list for select_one / select_multiple
	Groups   []Group  // ancestors, outermost first
}

// Path returns the submission data key for the field, qualified by its
// ancestor group names.
func (f *Field) Path() string {
	if len(f.Groups) == 0 {
		return f.Name
	}
	parts := make([]string, 0, len(f.Groups)+1)
	for _, g := range f.Groups {
		parts = append(parts, g.Name)
	}
	parts = append(parts, f.Name)
	return strings.Join(parts, "/")
}

// Choice is one entry in a choice list.
type Choice struct {
	Name   string
	Labels LabelMap
}

// ChoiceList is an ordered list of choices.
type ChoiceList []Choice

// Version is one deployed schema version.
type Version struct {
	UID          string
	Translations []string // label languages, default first; empty = untranslated form
	Fields       []*Field
	Choices      map[string]ChoiceList
}

// Pack bundles a source's deployed schema versions under its display title.
type Pack struct {
	Title    string
	Versions []*Version // oldest first
}

// NewPack creates a pack. Versions must be ordered oldest first.
func NewPack(title string, versions ...*Version) (*Pack, error) {
	if len(versions) == 0 {
		return nil, errors.New("a pack requires at least one deployed version")
	}
	return &Pack{Title: title, Versions: versions}, nil
}

// AvailableTranslations returns the latest version's translation names.
func (p *Pack) AvailableTranslations() []string {
	return p.Versions[len(p.Versions)-1].Translations
}

// effectiveSchema resolves the field set, choice lists, and translations for
// an export. With allVersions, fields are merged across every deployed
// version oldest to newest: column order is first appearance, later
// definitions win. Otherwise only the latest version contributes.
func (p *Pack) effectiveSchema(allVersions bool) ([]*Field, map[string]ChoiceList, []string) {
	latest := p.Versions[len(p.Versions)-1]
	if !allVersions {
		return latest.Fields, latest.Choices, latest.Translations
	}

	var fields []*Field
	index := map[string]int{}
	choices := map[string]ChoiceList{}
	for _, v := range p.Versions {
		for _, f := range v.Fields {
			if i, seen := index[f.Name]; seen {
				fields[i] = f
			} else {
				index[f.Name] = len(fields)
				fields = append(fields, f)
			}
		}
		for name, list := range v.Choices {
			choices[name] = list
		}
	}
	return fields, choices, latest.Translations
}

// label resolves a LabelMap for the given language, falling back to name.
func label(labels LabelMap, lang Lang, translations []string, name string) string {
	if lang == LangRaw {
		return name
	}
	if lang == LangUntranslated {
		if len(translations) > 0 {
			if l, ok := labels[translations[0]]; ok {
				return l
			}
		}
		if l, ok := labels[""]; ok {
			return l
		}
		return name
	}
	if l, ok := labels[string(lang)]; ok {
		return l
	}
	return name
}
