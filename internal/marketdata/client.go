package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"stock-vote-sim-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const chartPath = "/v8/finance/chart/{symbol}"

// Close is a daily closing price.
type Close struct {
	Date  time.Time
	Price float64
}

// ChartAPI is the interface of the daily-close chart endpoint, so tests can
// substitute a fake.
type ChartAPI interface {
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error)
}

// Client fetches daily closing prices from a Yahoo-chart-style endpoint.
// It implements ChartAPI.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ChartAPI = (*Client)(nil)

// NewClient creates a new chart API client.
func NewClient(cfg *config.Market, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// chartResponse mirrors the chart endpoint's JSON envelope. Closes can be
// null for days the symbol did not trade.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCloses fetches the daily closing prices for symbol in [start, end].
func (c *Client) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	var result chartResponse

	req := c.client.R().
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10),
			"interval": "1d",
		}).
		SetHeader("Accept", "application/json").
		SetResult(&result)

	resp, err := c.doRequest(ctx, "GET", chartPath, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily closes for %s: %w", symbol, err)
	}

	parsed := resp.Result().(*chartResponse)
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s (%s)",
			symbol, parsed.Chart.Error.Description, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	series := parsed.Chart.Result[0]
	quote := series.Indicators.Quote[0]

	closes := make([]Close, 0, len(series.Timestamp))
	for i, ts := range series.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC()
		closes = append(closes, Close{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Price: *quote.Close[i],
		})
	}
	return closes, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
