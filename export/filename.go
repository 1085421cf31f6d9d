package export

import (
	"fmt"
	"time"

	"github.com/skubi6/kpi/formpack"
)

// MaxFilenameLength bounds export filenames; some storage backends choke
// on longer names.
const MaxFilenameLength = 240

const filenameTimeLayout = "2006-01-02-15-04-05"

// FilenameLanguage returns the language component of an export filename.
func FilenameLanguage(format Format, lang formpack.Lang) string {
	switch {
	case format == FormatSPSSLabels:
		return "SPSS Labels"
	case lang == formpack.LangUntranslated || lang == "":
		return "labels"
	case lang == formpack.LangRaw:
		return "xml"
	}
	return string(lang)
}

// BuildFilename composes "{title} - {scope} - {lang} - {timestamp}.{ext}".
// When the composition would exceed MaxFilenameLength, only the title is
// shortened, by the exact overrun, so the result is exactly the maximum.
func BuildFilename(title string, allVersions bool, language string, ts time.Time, extension string) string {
	scope := "latest version"
	if allVersions {
		scope = "all versions"
	}
	compose := func(title string) string {
		return fmt.Sprintf("%s - %s - %s - %s.%s",
			title, scope, language, ts.UTC().Format(filenameTimeLayout), extension)
	}

	filename := compose(title)
	overrun := len([]rune(filename)) - MaxFilenameLength
	if overrun <= 0 {
		return filename
	}
	return compose(ellipsize(title, len([]rune(title))-overrun))
}

// ellipsize shortens s to at most limit runes, replacing the cut tail with
// a single ellipsis rune.
func ellipsize(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit < 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
