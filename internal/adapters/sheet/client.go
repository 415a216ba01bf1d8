package sheet

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"glucosedash/internal/domain"
	"glucosedash/internal/ports"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client fetches the published CSV and parses it on every call.
type Client struct {
	http    *resty.Client
	url     string
	parser  *Parser
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

var _ ports.ReadingSource = (*Client)(nil)

type ClientOptions struct {
	URL           string
	Timeout       time.Duration
	RatePerMinute int
	DateLayout    string
	Location      *time.Location
}

func NewClient(log *zap.SugaredLogger, opts ClientOptions) *Client {
	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Accept", "text/csv")

	limit := rate.Inf
	if opts.RatePerMinute > 0 {
		limit = rate.Limit(float64(opts.RatePerMinute) / 60)
	}

	return &Client{
		http:    httpClient,
		url:     opts.URL,
		parser:  NewParser(log, opts.DateLayout, opts.Location),
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

func (c *Client) FetchReadings(ctx context.Context) ([]domain.Reading, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrSourceUnavailable, "failed to fetch sheet: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Wrapf(domain.ErrSourceUnavailable, "unexpected status %d", resp.StatusCode())
	}

	result, err := c.parser.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sheet")
	}

	c.log.Debugw("fetched sheet", "bytes", len(resp.Body()), "readings", len(result.Readings), "skipped", result.Skipped)
	return result.Readings, nil
}
