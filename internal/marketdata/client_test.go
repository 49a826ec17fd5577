package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func chartDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestDailyCloses(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// 2025-07-01 through 2025-07-03; the middle day did not trade.
		mockResponse := `{
			"chart": {
				"result": [{
					"timestamp": [1751328000, 1751414400, 1751500800],
					"indicators": {"quote": [{"close": [2000.5, null, 2010.0]}]}
				}],
				"error": null
			}
		}`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v8/finance/chart/7203.T", r.URL.Path)
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.NotEmpty(t, r.URL.Query().Get("period1"))
			assert.NotEmpty(t, r.URL.Query().Get("period2"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		closes, err := c.DailyCloses(context.Background(), "7203.T",
			chartDate(t, "2025-07-01"), chartDate(t, "2025-07-03"))

		assert.NoError(t, err)
		require.Len(t, closes, 2)
		assert.Equal(t, "2025-07-01", closes[0].Date.Format("2006-01-02"))
		assert.Equal(t, 2000.5, closes[0].Price)
		assert.Equal(t, "2025-07-03", closes[1].Date.Format("2006-01-02"))
		assert.Equal(t, 2010.0, closes[1].Price)
	})

	t.Run("ChartAPIError", func(t *testing.T) {
		mockResponse := `{
			"chart": {
				"result": null,
				"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
			}
		}`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		closes, err := c.DailyCloses(context.Background(), "XXXX.T",
			chartDate(t, "2025-07-01"), chartDate(t, "2025-07-03"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "chart API error")
		assert.Nil(t, closes)
	})

	t.Run("HTTPError", func(t *testing.T) {
		// 404 is not retryable, so the client fails fast.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		closes, err := c.DailyCloses(context.Background(), "7203.T",
			chartDate(t, "2025-07-01"), chartDate(t, "2025-07-03"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get daily closes")
		assert.Nil(t, closes)
	})

	t.Run("EmptyResult", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		closes, err := c.DailyCloses(context.Background(), "7203.T",
			chartDate(t, "2025-07-01"), chartDate(t, "2025-07-03"))

		assert.NoError(t, err)
		assert.Empty(t, closes)
	})

	t.Run("RetryOn429", func(t *testing.T) {
		attempts := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		_, err := c.DailyCloses(context.Background(), "7203.T",
			chartDate(t, "2025-07-01"), chartDate(t, "2025-07-03"))

		assert.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})
}
