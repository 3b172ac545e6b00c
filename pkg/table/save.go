package table

import (
	"encoding/csv"
	"io"

	"github.com/vizcli/viz/pkg/errors"
)

// WriteCSV writes the table with a header row, cells in canonical string
// form.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write csv header")
	}

	record := make([]string, t.NumCols())
	for r := range t.rows {
		for i := range t.cols {
			record[i] = t.cols[i].Value(r).String()
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write csv row %d", r)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush csv")
	}
	return nil
}
