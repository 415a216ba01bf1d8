package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"glucosedash/internal/analysis"
	"glucosedash/internal/domain"
	"glucosedash/internal/mocks"
	"glucosedash/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func testReadings() []domain.Reading {
	return []domain.Reading{
		{Date: day(10), Time: "07:00", Period: "Jejum", Glucose: 95},
		{Date: day(11), Time: "12:30", Period: "Após almoço", Glucose: 165},
		{Date: day(12), Time: "07:10", Period: "Jejum", Glucose: 62},
		{Date: day(13), Time: "19:45", Period: "Após jantar", Glucose: 210},
		{Date: day(14), Time: "07:05", Period: "Jejum", Glucose: 101},
	}
}

func setupAPI(source ports.ReadingSource) *API {
	return NewAPI(zap.NewNop().Sugar(), source, analysis.DefaultConfig(), func() time.Time { return fixedNow })
}

func serve(apiInstance *API, url string) *httptest.ResponseRecorder {
	return serveMethod(apiInstance, http.MethodGet, url)
}

func serveMethod(apiInstance *API, method, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, nil)
	w := httptest.NewRecorder()
	r := chi.NewRouter()
	r.Mount("/", apiInstance.Routes())
	r.ServeHTTP(w, req)
	return w
}

func TestGetReadings(t *testing.T) {
	testCases := []struct {
		name       string
		start      string
		end        string
		expectCode int
		expectLen  int
	}{
		{
			name:       "No Range",
			expectCode: http.StatusOK,
			expectLen:  5,
		},
		{
			name:       "Inclusive Range",
			start:      "2024-03-11",
			end:        "2024-03-13",
			expectCode: http.StatusOK,
			expectLen:  3,
		},
		{
			name:       "Open End",
			start:      "2024-03-13",
			expectCode: http.StatusOK,
			expectLen:  2,
		},
		{
			name:       "Open Start",
			end:        "2024-03-10",
			expectCode: http.StatusOK,
			expectLen:  1,
		},
		{
			name:       "No Data Available",
			start:      "2024-04-01",
			end:        "2024-04-05",
			expectCode: http.StatusOK,
			expectLen:  0,
		},
		{
			name:       "Invalid Date Format",
			start:      "March 10, 2024",
			expectCode: http.StatusBadRequest,
		},
		{
			name:       "End Before Start",
			start:      "2024-03-13",
			end:        "2024-03-11",
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source := new(mocks.MockReadingSource)
			source.On("FetchReadings", mock.Anything).Return(testReadings(), nil)

			url := fmt.Sprintf("/readings?start=%s&end=%s", tc.start, tc.end)
			w := serve(setupAPI(source), strings.ReplaceAll(url, " ", "%20"))

			assert.Equal(t, tc.expectCode, w.Code)
			if tc.expectCode != http.StatusOK {
				source.AssertNotCalled(t, "FetchReadings", mock.Anything)
				return
			}

			var response ReadingsResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tc.expectLen, response.Count)
			assert.Len(t, response.Readings, tc.expectLen)
		})
	}
}

func TestSourceFailure(t *testing.T) {
	endpoints := []string{"/readings", "/stats", "/patterns", "/recommendations", "/analysis", "/report", "/insights", "/export/csv", "/export/xlsx"}

	for _, endpoint := range endpoints {
		t.Run(endpoint, func(t *testing.T) {
			source := new(mocks.MockReadingSource)
			source.On("FetchReadings", mock.Anything).Return(nil, errors.Wrap(domain.ErrSourceUnavailable, "timeout"))

			w := serve(setupAPI(source), endpoint)
			assert.Equal(t, http.StatusBadGateway, w.Code)
		})
	}
}

func TestGetStats(t *testing.T) {
	source := new(mocks.MockReadingSource)
	source.On("FetchReadings", mock.Anything).Return(testReadings(), nil)

	w := serve(setupAPI(source), "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var response StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.InDelta(t, 126.6, response.Stats.Average, 1e-9)
	assert.Equal(t, 101.0, response.Stats.Median)
	assert.InDelta(t, 20.0, response.Stats.TimeInRange.Low, 1e-9)
	assert.InDelta(t, 60.0, response.Stats.TimeInRange.Target, 1e-9)
	assert.InDelta(t, 20.0, response.Stats.TimeInRange.High, 1e-9)
	assert.Len(t, response.Distribution, 4)
	assert.Len(t, response.Goals, 4)
}

func TestGetAnalysis(t *testing.T) {
	source := new(mocks.MockReadingSource)
	source.On("FetchReadings", mock.Anything).Return(testReadings(), nil)

	w := serve(setupAPI(source), "/analysis")
	require.Equal(t, http.StatusOK, w.Code)

	var response domain.Analysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.InDelta(t, 126.6, response.Stats.Average, 1e-9)
	assert.NotNil(t, response.Patterns.PeakHours)
	require.NotEmpty(t, response.Recommendations)
	assert.Equal(t, domain.PriorityHigh, response.Recommendations[0].Priority)
}

func TestGetRecommendations_Empty(t *testing.T) {
	source := new(mocks.MockReadingSource)
	source.On("FetchReadings", mock.Anything).Return([]domain.Reading{}, nil)

	w := serve(setupAPI(source), "/recommendations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetReportAndInsights(t *testing.T) {
	source := new(mocks.MockReadingSource)
	source.On("FetchReadings", mock.Anything).Return(testReadings(), nil)
	apiInstance := setupAPI(source)

	w := serve(apiInstance, "/report")
	require.Equal(t, http.StatusOK, w.Code)
	var report domain.PatternReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, 5, report.TotalReadings)
	assert.True(t, report.GeneratedAt.Equal(fixedNow))

	w = serve(apiInstance, "/insights")
	require.Equal(t, http.StatusOK, w.Code)
	var insights []domain.Insight
	require.NoError(t, json.NewDecoder(w.Body).Decode(&insights))
	assert.NotEmpty(t, insights)
}

func TestExport(t *testing.T) {
	testCases := []struct {
		name        string
		url         string
		readings    []domain.Reading
		expectCode  int
		contentType string
		filename    string
	}{
		{
			name:        "CSV",
			url:         "/export/csv",
			readings:    testReadings(),
			expectCode:  http.StatusOK,
			contentType: "text/csv; charset=utf-8",
			filename:    "glucose_readings_2024-03-15.csv",
		},
		{
			name:        "XLSX",
			url:         "/export/xlsx",
			readings:    testReadings(),
			expectCode:  http.StatusOK,
			contentType: xlsxContentType,
			filename:    "glucose_readings_2024-03-15.xlsx",
		},
		{
			name:       "CSV Empty",
			url:        "/export/csv",
			readings:   []domain.Reading{},
			expectCode: http.StatusNotFound,
		},
		{
			name:       "XLSX Empty Range",
			url:        "/export/xlsx?start=2025-01-01",
			readings:   testReadings(),
			expectCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source := new(mocks.MockReadingSource)
			source.On("FetchReadings", mock.Anything).Return(tc.readings, nil)

			w := serve(setupAPI(source), tc.url)
			assert.Equal(t, tc.expectCode, w.Code)
			if tc.expectCode != http.StatusOK {
				return
			}
			assert.Equal(t, tc.contentType, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), tc.filename)
			assert.NotZero(t, w.Body.Len())
		})
	}
}

func TestRepositoryRangePushdown(t *testing.T) {
	repo := new(mocks.MockReadingRepository)
	start := day(10)
	end := day(15).Add(-time.Nanosecond)
	repo.On("FetchReadingsBetween", mock.Anything, start, end).Return(testReadings()[1:4], nil)

	w := serve(setupAPI(repo), "/readings?start=2024-03-11&end=2024-03-13")
	require.Equal(t, http.StatusOK, w.Code)

	var response ReadingsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 3, response.Count)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FetchReadings", mock.Anything)
}

func TestHomeAndMetrics(t *testing.T) {
	apiInstance := setupAPI(new(mocks.MockReadingSource))

	w := serve(apiInstance, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Glucose Dashboard API")

	w = serve(apiInstance, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "glucosedash_http_requests_total")
}

func TestFilterByDate(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	readings := []domain.Reading{
		{Date: time.Date(2024, 3, 10, 0, 0, 0, 0, brt), Glucose: 100},
		{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, brt), Glucose: 110},
	}

	rng, err := parseDates("2024-03-10", "2024-03-10")
	require.NoError(t, err)

	filtered := filterByDate(readings, rng)
	require.Len(t, filtered, 1)
	assert.Equal(t, 100.0, filtered[0].Glucose)
}

func TestParseDates(t *testing.T) {
	rng, err := parseDates("", "")
	require.NoError(t, err)
	assert.False(t, rng.bounded())

	_, err = parseDates("2024-03-12", "2024-03-11")
	assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))

	rng, err = parseDates("2024-03-11", "2024-03-11")
	require.NoError(t, err)
	assert.True(t, rng.bounded())
	assert.Equal(t, day(12).Add(-time.Nanosecond), rng.endOfDay())
}

type cachedSource struct {
	mocks.MockReadingSource
}

func (m *cachedSource) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRefresh(t *testing.T) {
	testCases := []struct {
		name       string
		source     func() ports.ReadingSource
		expectCode int
	}{
		{
			name: "Cache Invalidated",
			source: func() ports.ReadingSource {
				source := new(cachedSource)
				source.On("Invalidate", mock.Anything).Return(nil).Once()
				return source
			},
			expectCode: http.StatusNoContent,
		},
		{
			name: "Cache Unavailable",
			source: func() ports.ReadingSource {
				source := new(cachedSource)
				source.On("Invalidate", mock.Anything).Return(errors.New("connection refused")).Once()
				return source
			},
			expectCode: http.StatusBadGateway,
		},
		{
			name: "No Cache Configured",
			source: func() ports.ReadingSource {
				return new(mocks.MockReadingSource)
			},
			expectCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source := tc.source()
			w := serveMethod(setupAPI(source), http.MethodPost, "/refresh")
			assert.Equal(t, tc.expectCode, w.Code)
			if cached, ok := source.(*cachedSource); ok {
				cached.AssertExpectations(t)
			}
		})
	}
}
