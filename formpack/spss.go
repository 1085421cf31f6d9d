package formpack

import (
	"strings"
)

// spssLabelSep separates a question label from a choice label in expanded
// select_multiple variable labels.
const spssLabelSep = " :: "

// SPSSScript is one label-definition script: variable labels for every
// column and value labels for every choice-backed column, in one language.
type SPSSScript struct {
	// Language is the translation name, or "" for an untranslated form.
	Language string
	// Content is the script body with LF line separators and no BOM; the
	// archive encoder applies the CRLF and byte-order-mark conventions.
	Content string
}

// SPSSLabelScripts renders one label script per available language (a single
// unnamed script for untranslated forms). Variable names are bare field
// names — choice columns become field_choice — and the sequence index column
// is omitted, since it is synthesized at export time rather than collected.
func (e *Export) SPSSLabelScripts() []SPSSScript {
	if len(e.translations) == 0 {
		return []SPSSScript{{Language: "", Content: e.spssScript(LangUntranslated)}}
	}
	scripts := make([]SPSSScript, 0, len(e.translations))
	for _, translation := range e.translations {
		scripts = append(scripts, SPSSScript{
			Language: translation,
			Content:  e.spssScript(Lang(translation)),
		})
	}
	return scripts
}

func (e *Export) spssScript(lang Lang) string {
	var lines []string

	lines = append(lines, "VARIABLE LABELS")
	first := true
	for _, col := range e.columns {
		if col.copyOf == ColumnIndex {
			continue
		}
		name, varLabel := e.spssVariable(col, lang)
		prefix := " /"
		if first {
			prefix = " "
			first = false
		}
		lines = append(lines, prefix+name+" '"+spssQuote(varLabel)+"'")
	}
	lines = append(lines, " .")

	valueLines := e.spssValueLabels(lang)
	if len(valueLines) > 0 {
		lines = append(lines, "VALUE LABELS")
		lines = append(lines, valueLines...)
		lines = append(lines, " .")
	}

	return strings.Join(lines, "\n")
}

func (e *Export) spssVariable(col Column, lang Lang) (name, varLabel string) {
	if col.copyOf != "" {
		return col.copyOf, col.copyOf
	}
	f := col.field
	fieldLabel := label(f.Labels, lang, e.translations, f.Name)
	if col.choice != nil {
		choiceLabel := label(col.choice.Labels, lang, e.translations, col.choice.Name)
		return f.Name + "_" + col.choice.Name, fieldLabel + spssLabelSep + choiceLabel
	}
	return f.Name, fieldLabel
}

// spssValueLabels emits value-label stanzas for select_one fields only;
// select_multiple responses are already expanded into 0/1 columns.
func (e *Export) spssValueLabels(lang Lang) []string {
	var lines []string
	first := true
	for _, f := range e.fields {
		if f.Type != TypeSelectOne {
			continue
		}
		list := e.choices[f.ListName]
		if len(list) == 0 {
			continue
		}
		prefix := " /"
		if first {
			prefix = " "
			first = false
		}
		lines = append(lines, prefix+f.Name)
		for _, c := range list {
			choiceLabel := label(c.Labels, lang, e.translations, c.Name)
			lines = append(lines, " '"+spssQuote(c.Name)+"' '"+spssQuote(choiceLabel)+"'")
		}
	}
	return lines
}

// spssQuote escapes embedded single quotes by doubling them.
func spssQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
