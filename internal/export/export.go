// Package export renders a principal's movement history as CSV, per
// RFC 4180, with no I/O plumbing of its own — callers supply the
// io.Writer. encoding/csv is the standard library's own RFC 4180
// implementation; no example repo in the corpus reaches for a
// third-party CSV library, and csv.Writer already provides correct
// quoting/escaping, so wrapping it in a dependency would add no value.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

var Header = []string{"Date", "Kind", "Category", "Amount", "Description", "Month", "Year"}

// WriteMovementsCSV writes the header row followed by one row per
// movement (already ordered by the caller, typically date desc). An
// empty slice still yields a header-only CSV.
func WriteMovementsCSV(w io.Writer, movements []ledgerdb.Movement) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, m := range movements {
		row := []string{
			m.Date.Format("2006-01-02"),
			string(m.Kind),
			m.Category,
			m.Amount.StringFixed(2),
			m.Description,
			strconv.Itoa(m.Month),
			strconv.Itoa(m.Year),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
