package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"glucosedash/internal/adapters"
	"glucosedash/internal/analysis"
	"glucosedash/internal/config"
	"glucosedash/internal/domain"
	"glucosedash/internal/export"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type reportOutput struct {
	Analysis domain.Analysis      `json:"analysis"`
	Report   domain.PatternReport `json:"report"`
	Insights []domain.Insight     `json:"insights"`
}

func main() {
	csvPath := flag.String("csv", "", "write the readings as CSV to this path")
	xlsxPath := flag.String("xlsx", "", "write the XLSX workbook to this path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	source, closeSource, err := adapters.NewReadingSource(ctx, log, cfg)
	if err != nil {
		log.Fatalw("failed to set up reading source", "error", err)
	}
	defer closeSource(context.Background())

	readings, err := source.FetchReadings(ctx)
	if err != nil {
		log.Fatalw("failed to fetch readings", "error", err)
	}

	now := time.Now()
	out := reportOutput{
		Analysis: analysis.Analyze(readings, cfg.Analysis, now),
		Report:   analysis.BuildReport(readings, cfg.Analysis, now),
		Insights: analysis.RecentInsights(readings, cfg.Analysis, now),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalw("failed to write report", "error", err)
	}

	if *csvPath != "" {
		if err := writeFile(*csvPath, func(f *os.File) error { return export.WriteCSV(f, readings, cfg.Analysis) }); err != nil {
			log.Fatalw("failed to export csv", "path", *csvPath, "error", err)
		}
		log.Infow("wrote csv", "path", *csvPath, "readings", len(readings))
	}

	if *xlsxPath != "" {
		if err := writeFile(*xlsxPath, func(f *os.File) error { return export.WriteXLSX(f, readings, cfg.Analysis, now) }); err != nil {
			log.Fatalw("failed to export xlsx", "path", *xlsxPath, "error", err)
		}
		log.Infow("wrote xlsx", "path", *xlsxPath, "readings", len(readings))
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close file")
}
