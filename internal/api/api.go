package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"glucosedash/internal/analysis"
	"glucosedash/internal/domain"
	"glucosedash/internal/export"
	"glucosedash/internal/metrics"
	"glucosedash/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type API struct {
	log      *zap.SugaredLogger
	source   ports.ReadingSource
	cfg      analysis.Config
	validate *validator.Validate
	now      func() time.Time
}

// NewAPI builds the HTTP surface over source. A nil clock means time.Now.
func NewAPI(log *zap.SugaredLogger, source ports.ReadingSource, cfg analysis.Config, clock func() time.Time) *API {
	if clock == nil {
		clock = time.Now
	}
	return &API{
		log:      log,
		source:   source,
		cfg:      cfg,
		validate: validator.New(),
		now:      clock,
	}
}

func (api *API) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(api.LoggingMiddleware)

	// home endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respondWithJSON(w, "Glucose Dashboard API")
	})

	r.Get("/readings", api.GetReadings)
	r.Get("/stats", api.GetStats)
	r.Get("/patterns", api.GetPatterns)
	r.Get("/recommendations", api.GetRecommendations)
	r.Get("/analysis", api.GetAnalysis)
	r.Get("/report", api.GetReport)
	r.Get("/insights", api.GetInsights)

	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", api.ExportCSV)
		r.Get("/xlsx", api.ExportXLSX)
	})

	r.Post("/refresh", api.Refresh)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// cacheInvalidator is implemented by sources that keep a cached copy of the readings.
type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type RangeParams struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

type ReadingsResponse struct {
	Count    int              `json:"count"`
	Readings []domain.Reading `json:"readings"`
}

type StatsResponse struct {
	Stats        domain.GlucoseStats  `json:"stats"`
	Distribution []domain.StatusCount `json:"distribution"`
	Goals        []domain.RangeGoal   `json:"goals"`
}

func (api *API) GetReadings(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetReadings")
	if !ok {
		return
	}
	respondWithJSON(w, ReadingsResponse{Count: len(readings), Readings: readings})
}

func (api *API) GetStats(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetStats")
	if !ok {
		return
	}

	stats := analysis.ComputeStats(readings, api.cfg)
	respondWithJSON(w, StatsResponse{
		Stats:        stats,
		Distribution: analysis.Distribution(readings, api.cfg),
		Goals:        analysis.EvaluateGoals(stats),
	})
}

func (api *API) GetPatterns(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetPatterns")
	if !ok {
		return
	}
	respondWithJSON(w, analysis.AnalyzePatterns(readings, api.cfg, api.now()))
}

func (api *API) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetRecommendations")
	if !ok {
		return
	}
	respondWithJSON(w, api.analyze(readings).Recommendations)
}

func (api *API) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetAnalysis")
	if !ok {
		return
	}
	respondWithJSON(w, api.analyze(readings))
}

func (api *API) GetReport(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetReport")
	if !ok {
		return
	}
	respondWithJSON(w, analysis.BuildReport(readings, api.cfg, api.now()))
}

func (api *API) GetInsights(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "GetInsights")
	if !ok {
		return
	}
	respondWithJSON(w, analysis.RecentInsights(readings, api.cfg, api.now()))
}

func (api *API) ExportCSV(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "ExportCSV")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, readings, api.cfg); err != nil {
		api.exportError(w, "ExportCSV", err)
		return
	}
	api.attachment(w, "text/csv; charset=utf-8", "csv", buf.Bytes())
}

func (api *API) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	readings, ok := api.loadReadings(w, r, "ExportXLSX")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, readings, api.cfg, api.now()); err != nil {
		api.exportError(w, "ExportXLSX", err)
		return
	}
	api.attachment(w, xlsxContentType, "xlsx", buf.Bytes())
}

// Refresh drops the cached readings so the next request reloads the source.
func (api *API) Refresh(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "Refresh")

	cached, ok := api.source.(cacheInvalidator)
	if !ok {
		http.Error(w, "No reading cache configured", http.StatusNotFound)
		return
	}

	if err := cached.Invalidate(r.Context()); err != nil {
		log.Errorf("failed to invalidate cache: %v", err)
		http.Error(w, "Failed to refresh readings", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadReadings validates the range query, fetches from the source and
// filters by date. It writes the error response itself when it returns false.
func (api *API) loadReadings(w http.ResponseWriter, r *http.Request, method string) ([]domain.Reading, bool) {
	log := api.log.With("method", method)

	params := RangeParams{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}

	err := api.validate.Struct(params)
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	rng, err := parseDates(params.Start, params.End)
	if err != nil {
		log.Errorf("invalid date range: %v", err)
		http.Error(w, "Invalid date range: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	readings, err := api.fetch(r, rng)
	if err != nil {
		metrics.SourceErrors.Inc()
		log.Errorf("failed to fetch readings: %v", err)
		http.Error(w, "Failed to load readings", http.StatusBadGateway)
		return nil, false
	}
	metrics.ReadingsLoaded.Set(float64(len(readings)))

	return filterByDate(readings, rng), true
}

// fetch pushes a bounded range down to repositories that can query by date.
// The query is widened by a day on each side so readings stored at a zoned
// midnight are not lost; filterByDate trims the result.
func (api *API) fetch(r *http.Request, rng dateRange) ([]domain.Reading, error) {
	if repo, ok := api.source.(ports.ReadingRepository); ok && rng.bounded() {
		return repo.FetchReadingsBetween(r.Context(), rng.start.Add(-24*time.Hour), rng.endOfDay().Add(24*time.Hour))
	}
	return api.source.FetchReadings(r.Context())
}

func (api *API) analyze(readings []domain.Reading) domain.Analysis {
	started := time.Now()
	result := analysis.Analyze(readings, api.cfg, api.now())
	metrics.AnalysisLatency.Observe(time.Since(started).Seconds())

	for _, rec := range result.Recommendations {
		metrics.RecommendationsIssued.WithLabelValues(string(rec.Type), string(rec.Priority)).Inc()
	}
	return result
}

func (api *API) exportError(w http.ResponseWriter, method string, err error) {
	if errors.Is(err, domain.ErrNoReadings) {
		http.Error(w, "No readings to export", http.StatusNotFound)
		return
	}
	api.log.With("method", method).Errorf("export failed: %v", err)
	http.Error(w, "Export failed", http.StatusInternalServerError)
}

func (api *API) attachment(w http.ResponseWriter, contentType, ext string, body []byte) {
	filename := fmt.Sprintf("glucose_readings_%s.%s", api.now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func respondWithJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
