package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skubi6/kpi/export"
	"github.com/skubi6/kpi/formpack"
)

var filenameTime = time.Date(2026, 8, 28, 13, 37, 0, 0, time.UTC)

func TestBuildFilename(t *testing.T) {
	got := export.BuildFilename("Identificación de animales", true, "labels", filenameTime, "csv")
	assert.Equal(t, "Identificación de animales - all versions - labels - 2026-08-28-13-37-00.csv", got)
}

func TestBuildFilename_LatestVersion(t *testing.T) {
	got := export.BuildFilename("Survey", false, "English", filenameTime, "xlsx")
	assert.Equal(t, "Survey - latest version - English - 2026-08-28-13-37-00.xlsx", got)
}

func TestBuildFilename_Bound(t *testing.T) {
	// Any overrun is absorbed by the title alone, leaving exactly the
	// maximum length, with an ellipsis marking the cut.
	long := strings.Repeat("x", 500)
	got := export.BuildFilename(long, true, "labels", filenameTime, "csv")
	assert.Equal(t, export.MaxFilenameLength, len([]rune(got)))
	assert.Contains(t, got, "…")
	assert.True(t, strings.HasSuffix(got, " - all versions - labels - 2026-08-28-13-37-00.csv"),
		"only the title is shortened")
}

func TestBuildFilename_NaturalLengthUntouched(t *testing.T) {
	for _, n := range []int{0, 1, 100, 190} {
		title := strings.Repeat("x", n)
		got := export.BuildFilename(title, true, "labels", filenameTime, "csv")
		natural := len(title) + len(" - all versions - labels - 2026-08-28-13-37-00.csv")
		if natural <= export.MaxFilenameLength {
			assert.Equal(t, natural, len([]rune(got)), "n=%d", n)
			assert.NotContains(t, got, "…")
		} else {
			assert.Equal(t, export.MaxFilenameLength, len([]rune(got)), "n=%d", n)
		}
	}
}

func TestBuildFilename_ExactBoundary(t *testing.T) {
	suffix := " - all versions - labels - 2026-08-28-13-37-00.csv"
	exact := strings.Repeat("x", export.MaxFilenameLength-len(suffix))
	got := export.BuildFilename(exact, true, "labels", filenameTime, "csv")
	assert.Equal(t, export.MaxFilenameLength, len([]rune(got)))
	assert.NotContains(t, got, "…", "a composition at exactly the maximum is not truncated")

	over := exact + "x"
	got = export.BuildFilename(over, true, "labels", filenameTime, "csv")
	assert.Equal(t, export.MaxFilenameLength, len([]rune(got)))
	assert.Contains(t, got, "…")
}

func TestFilenameLanguage(t *testing.T) {
	assert.Equal(t, "labels", export.FilenameLanguage(export.FormatCSV, formpack.LangUntranslated))
	assert.Equal(t, "labels", export.FilenameLanguage(export.FormatCSV, ""))
	assert.Equal(t, "xml", export.FilenameLanguage(export.FormatCSV, formpack.LangRaw))
	assert.Equal(t, "Spanish", export.FilenameLanguage(export.FormatCSV, "Spanish"))
	// The label-script archive ignores the language selection entirely
	assert.Equal(t, "SPSS Labels", export.FilenameLanguage(export.FormatSPSSLabels, "Spanish"))
}
