package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
)

// WriteCSV encodes the export as CSV: every field quoted, fields joined by
// ";", records terminated by CRLF, UTF-8. Rows are written as the stream
// yields them; nothing is buffered beyond one record.
func WriteCSV(w io.Writer, exp *formpack.Export, stream formpack.Stream) error {
	bw := bufio.NewWriter(w)

	for _, row := range exp.TagRows() {
		if err := writeCSVRecord(bw, row); err != nil {
			return err
		}
	}
	if err := writeCSVRecord(bw, exp.HeaderRow()); err != nil {
		return err
	}

	rows := exp.Rows(stream)
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := writeCSVRecord(bw, row); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing csv output")
	}
	return nil
}

func writeCSVRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(';')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return errors.Wrap(err, "writing csv record")
	}
	return nil
}
