// Package export renders reading sets as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"glucosedash/internal/analysis"
	"glucosedash/internal/domain"

	"github.com/pkg/errors"
)

const dateLayout = "02/01/2006"

var csvHeader = []string{"Date", "Time", "Period", "Glucose (mg/dL)", "Status", "Notes"}

// WriteCSV writes a UTF-8 BOM followed by one CRLF terminated row per reading.
func WriteCSV(w io.Writer, readings []domain.Reading, cfg analysis.Config) error {
	if len(readings) == 0 {
		return errors.Wrap(domain.ErrNoReadings, "nothing to export")
	}

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.Wrap(err, "failed to write BOM")
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for _, r := range readings {
		if err := cw.Write(readingRow(r, cfg)); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

func readingRow(r domain.Reading, cfg analysis.Config) []string {
	return []string{
		r.Date.Format(dateLayout),
		sanitizeCSVField(r.Time),
		sanitizeCSVField(r.Period),
		formatGlucose(r.Glucose),
		string(analysis.Classify(r.Glucose, cfg)),
		sanitizeCSVField(r.Notes),
	}
}

func formatGlucose(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sanitizeCSVField prevents CSV formula injection.
func sanitizeCSVField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
