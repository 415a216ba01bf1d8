// Package sheet loads glucose readings from a spreadsheet published as CSV.
package sheet

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"glucosedash/internal/analysis"
	"glucosedash/internal/domain"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultDateLayout = "1/2/2006"

// columns holds the index of each recognised header, -1 when absent.
type columns struct {
	date, time, period, glucose, notes int
}

func detectColumns(header []string) columns {
	find := func(keywords ...string) int {
		for i, h := range header {
			name := strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
			for _, k := range keywords {
				if strings.Contains(name, k) {
					return i
				}
			}
		}
		return -1
	}

	return columns{
		date:    find("data", "date"),
		time:    find("hora", "time"),
		period:  find("período", "periodo", "period"),
		glucose: find("glicemia", "valor", "glucose", "value"),
		notes:   find("observ", "nota", "note"),
	}
}

func (c columns) complete() bool {
	return c.date >= 0 && c.time >= 0 && c.period >= 0 && c.glucose >= 0
}

// ParseResult is the outcome of parsing one CSV document.
type ParseResult struct {
	Readings []domain.Reading
	Skipped  int
}

// Parser turns CSV text into readings. Malformed rows are skipped, never fatal.
type Parser struct {
	log        *zap.SugaredLogger
	dateLayout string
	location   *time.Location
}

func NewParser(log *zap.SugaredLogger, dateLayout string, location *time.Location) *Parser {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	if location == nil {
		location = time.UTC
	}
	return &Parser{log: log, dateLayout: dateLayout, location: location}
}

func (p *Parser) Parse(r io.Reader) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return ParseResult{Readings: []domain.Reading{}}, nil
	}
	if err != nil {
		return ParseResult{}, errors.Wrap(err, "failed to read header")
	}

	cols := detectColumns(header)
	if !cols.complete() {
		return ParseResult{}, errors.Errorf("missing required columns in header %q", header)
	}

	result := ParseResult{Readings: []domain.Reading{}}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			p.log.Debugw("skipping unreadable row", "line", line, "error", err)
			result.Skipped++
			continue
		}

		reading, reason := p.parseRecord(record, cols)
		if reason != "" {
			p.log.Debugw("skipping row", "line", line, "reason", reason, "record", record)
			result.Skipped++
			continue
		}
		result.Readings = append(result.Readings, reading)
	}

	sort.SliceStable(result.Readings, func(i, j int) bool {
		a, b := analysis.TimestampOf(result.Readings[i]), analysis.TimestampOf(result.Readings[j])
		return a.Before(b)
	})

	p.log.Infow("parsed readings", "valid", len(result.Readings), "skipped", result.Skipped)
	return result, nil
}

// parseRecord returns the reading or a non-empty reason the row was rejected.
func (p *Parser) parseRecord(record []string, cols columns) (domain.Reading, string) {
	if len(record) < 4 {
		return domain.Reading{}, "too few fields"
	}

	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.Trim(strings.TrimSpace(record[i]), `"`)
	}

	dateStr, timeStr, period, glucoseStr := field(cols.date), field(cols.time), field(cols.period), field(cols.glucose)
	if dateStr == "" || timeStr == "" || period == "" || glucoseStr == "" {
		return domain.Reading{}, "missing required field"
	}

	date, err := time.ParseInLocation(p.dateLayout, dateStr, p.location)
	if err != nil {
		return domain.Reading{}, "invalid date"
	}

	glucose, err := strconv.ParseFloat(strings.Replace(glucoseStr, ",", ".", 1), 64)
	if err != nil || math.IsNaN(glucose) || math.IsInf(glucose, 0) || glucose <= 0 {
		return domain.Reading{}, "invalid glucose value"
	}

	return domain.Reading{
		Date:    date,
		Time:    timeStr,
		Period:  period,
		Glucose: glucose,
		Notes:   field(cols.notes),
	}, ""
}
