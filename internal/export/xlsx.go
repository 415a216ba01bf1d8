package export

import (
	"io"
	"math"
	"time"

	"glucosedash/internal/analysis"
	"glucosedash/internal/domain"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetHighest  = "Highest"
	SheetLowest   = "Lowest"
	SheetReadings = "Readings"
)

var readingColumnWidths = []float64{12, 8, 22, 16, 10, 40}

// WriteXLSX writes a workbook with the summary statistics, the extreme
// readings and the full reading list.
func WriteXLSX(w io.Writer, readings []domain.Reading, cfg analysis.Config, now time.Time) error {
	if len(readings) == 0 {
		return errors.Wrap(domain.ErrNoReadings, "nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	stats := analysis.ComputeStats(readings, cfg)
	report := analysis.BuildReport(readings, cfg, now)

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return errors.Wrap(err, "failed to rename default sheet")
	}
	if err := writeSummary(f, headerStyle, stats, report); err != nil {
		return err
	}

	tables := []struct {
		name     string
		readings []domain.Reading
	}{
		{SheetHighest, report.HighestReadings},
		{SheetLowest, report.LowestReadings},
		{SheetReadings, readings},
	}
	for _, table := range tables {
		if _, err := f.NewSheet(table.name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", table.name)
		}
		if err := writeReadings(f, table.name, headerStyle, table.readings, cfg); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return errors.Wrap(err, "failed to write workbook")
}

func writeSummary(f *excelize.File, headerStyle int, stats domain.GlucoseStats, report domain.PatternReport) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", report.GeneratedAt.Format(time.RFC3339)},
		{"Total readings", report.TotalReadings},
		{"Average (mg/dL)", round1(stats.Average)},
		{"Median (mg/dL)", round1(stats.Median)},
		{"Standard deviation", round1(stats.StandardDeviation)},
		{"Coefficient of variation (%)", round1(stats.CoefficientOfVariation)},
		{"Time below range (%)", round1(stats.TimeInRange.Low)},
		{"Time in range (%)", round1(stats.TimeInRange.Target)},
		{"Time above range (%)", round1(stats.TimeInRange.High)},
		{"Time very high (%)", round1(stats.TimeInRange.VeryHigh)},
		{"Variability score", round1(stats.VariabilityScore)},
		{"Control score", round1(stats.ControlScore)},
		{},
		{"Status", "Count", "Percent"},
	}
	for _, d := range report.Distribution {
		rows = append(rows, []interface{}{string(d.Status), d.Count, round1(d.Percent)})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Band", "Value (%)", "Goal", "Reached"})
	for _, g := range analysis.EvaluateGoals(stats) {
		rows = append(rows, []interface{}{g.Band, round1(g.Value), g.Goal, g.Reached})
	}

	rows = append(rows, []interface{}{}, []interface{}{"Hour", "Average (mg/dL)", "Count"})
	for _, h := range report.PeakHours {
		rows = append(rows, []interface{}{h.Hour, round1(h.Average), h.Count})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Weekday", "Average (mg/dL)", "Count"})
	for _, d := range report.PeakDays {
		rows = append(rows, []interface{}{d.DayName, round1(d.Average), d.Count})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Meal context", "Average (mg/dL)", "Count"},
		[]interface{}{"Before meals", round1(report.MealPatterns.BeforeMeals.Average), report.MealPatterns.BeforeMeals.Count},
		[]interface{}{"After meals", round1(report.MealPatterns.AfterMeals.Average), report.MealPatterns.AfterMeals.Count},
	)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "failed to resolve cell")
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write summary row %d", i+1)
		}
		if isHeaderRow(row) {
			end, _ := excelize.CoordinatesToCellName(len(row), i+1)
			if err := f.SetCellStyle(SheetSummary, cell, end, headerStyle); err != nil {
				return errors.Wrap(err, "failed to style summary header")
			}
		}
	}

	if err := f.SetColWidth(SheetSummary, "A", "A", 30); err != nil {
		return errors.Wrap(err, "failed to set column width")
	}
	return f.SetColWidth(SheetSummary, "B", "D", 14)
}

func isHeaderRow(row []interface{}) bool {
	switch row[0] {
	case "Metric", "Status", "Band", "Hour", "Weekday", "Meal context":
		return true
	}
	return false
}

func writeReadings(f *excelize.File, sheet string, headerStyle int, readings []domain.Reading, cfg analysis.Config) error {
	for col, header := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "failed to resolve header cell")
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrapf(err, "failed to write header %s", header)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return errors.Wrap(err, "failed to style header")
		}
	}

	for i, r := range readings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to resolve row cell")
		}
		row := []interface{}{
			r.Date.Format(dateLayout),
			r.Time,
			r.Period,
			r.Glucose,
			string(analysis.Classify(r.Glucose, cfg)),
			r.Notes,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write %s row %d", sheet, i+2)
		}
	}

	for i, width := range readingColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(err, "failed to resolve column")
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return errors.Wrap(err, "failed to set column width")
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
