package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
)

// utf8BOM marks the scripts as UTF-8 for SPSS, which otherwise assumes a
// locale encoding.
const utf8BOM = "\uFEFF"

// WriteSPSSLabels encodes the export's label-definition scripts, one per
// available language, into a zip archive. Each script is UTF-8 with a
// byte-order mark and CRLF line endings.
func WriteSPSSLabels(w io.Writer, exp *formpack.Export) error {
	zw := zip.NewWriter(w)

	for _, script := range exp.SPSSLabelScripts() {
		name := spssScriptName(exp.Title, script.Language)
		entry, err := zw.Create(name)
		if err != nil {
			return errors.Wrapf(err, "creating archive entry %q", name)
		}
		content := utf8BOM + strings.ReplaceAll(script.Content, "\n", "\r\n")
		if _, err := io.WriteString(entry, content); err != nil {
			return errors.Wrapf(err, "writing archive entry %q", name)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "finalizing label archive")
	}
	return nil
}

func spssScriptName(title, language string) string {
	if language == "" {
		return fmt.Sprintf("%s - SPSS labels.sps", title)
	}
	return fmt.Sprintf("%s - %s - SPSS labels.sps", title, language)
}
