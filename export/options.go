// Package export implements the export job body: request validation, the
// streaming encode pipeline, output naming, and the housekeeping performed
// around each run.
package export

import (
	"strings"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
	"github.com/skubi6/kpi/task"
)

// Format is one of the supported output kinds.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatXLSX       Format = "xlsx"
	FormatSPSSLabels Format = "spss_labels"
)

// Extension returns the output file extension for the format.
func (f Format) Extension() string {
	if f == FormatSPSSLabels {
		return "zip"
	}
	return string(f)
}

// ParseFormat normalizes a request's type value. "xls" is accepted as an
// alias for the workbook format, as older clients still send it.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "xls", "xlsx":
		return FormatXLSX, nil
	case "spss_labels":
		return FormatSPSSLabels, nil
	}
	return "", &task.UnsupportedFormatError{Format: s}
}

// Request holds a validated export request.
type Request struct {
	Source  string
	Format  Format
	Options formpack.Options
}

// ParseRequest extracts and validates the export request carried in a
// task's data. Source presence is the caller's first check; format and
// option defaults follow the request schema.
func ParseRequest(t *task.Task) (*Request, error) {
	source := t.DataString("source")
	if source == "" {
		return nil, errors.New("no source specified for the export")
	}

	format, err := ParseFormat(t.DataString("type"))
	if err != nil {
		return nil, err
	}

	groupSep := t.DataString("group_sep")
	if groupSep == "" {
		groupSep = "/"
	}

	tagCols := t.DataStringList("tag_cols_for_header", []string{"hxl"})

	return &Request{
		Source: source,
		Format: format,
		Options: formpack.Options{
			Lang:              formpack.Lang(t.DataString("lang")),
			GroupSep:          groupSep,
			HierarchyInLabels: t.DataBool("hierarchy_in_labels", false),
			AllVersions:       t.DataBool("fields_from_all_versions", true),
			TagCols:           tagCols,
		},
	}, nil
}
