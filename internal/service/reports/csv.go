package reports

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table отчёт, который можно выгрузить в CSV
type Table interface {
	Header() []string
	Records() [][]string
}

// WriteCSV пишет заголовок и строки отчёта в w
func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Header()); err != nil {
		return fmt.Errorf("%w: WriteCSV - header: %v", ErrInternal, err)
	}
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("%w: WriteCSV - records: %v", ErrInternal, err)
	}
	return nil
}
