package export

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
)

// Worksheet names are capped by the xlsx format itself.
const maxSheetNameLength = 31

// WriteXLSX encodes the export as a single-sheet workbook named after the
// source title. The encoder needs random-access output, so the workbook is
// materialized into a temporary file and copied to w afterwards.
func WriteXLSX(w io.Writer, exp *formpack.Export, stream formpack.Stream) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(exp.Title)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrapf(err, "creating worksheet %q", sheet)
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return errors.Wrap(err, "removing default worksheet")
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.Wrap(err, "opening stream writer")
	}

	rowNum := 1
	writeRow := func(row []string, typed bool) error {
		cells := make([]any, len(row))
		for i, v := range row {
			if typed && exp.IsNumericColumn(i) {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					cells[i] = n
					continue
				}
				if x, err := strconv.ParseFloat(v, 64); err == nil {
					cells[i] = x
					continue
				}
			}
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return errors.WithStack(err)
		}
		rowNum++
		return errors.Wrap(sw.SetRow(cell, cells), "writing worksheet row")
	}

	for _, row := range exp.TagRows() {
		if err := writeRow(row, false); err != nil {
			return err
		}
	}
	if err := writeRow(exp.HeaderRow(), false); err != nil {
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
		if err := writeRow(row, true); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flushing stream writer")
	}

	tmp, err := os.CreateTemp("", "export-*.xlsx")
	if err != nil {
		return errors.Wrap(err, "creating workbook scratch file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := f.Write(tmp); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(w, tmp); err != nil {
		return errors.Wrap(err, "copying workbook to output")
	}
	return nil
}

// Characters the xlsx format forbids in worksheet names.
var sheetNameSanitizer = strings.NewReplacer(
	":", "-", `\`, "-", "/", "-", "?", "-", "*", "-", "[", "-", "]", "-",
)

func sheetName(title string) string {
	runes := []rune(sheetNameSanitizer.Replace(title))
	if len(runes) > maxSheetNameLength {
		runes = runes[:maxSheetNameLength]
	}
	if len(runes) == 0 {
		return "Sheet1"
	}
	return string(runes)
}
