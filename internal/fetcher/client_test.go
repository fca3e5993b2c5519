package fetcher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndhk/keiba-core/internal/domain"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestFetchPayoutsParsesSuccessfulResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"win": []map[string]interface{}{
				{"horse_number": 3, "payout": "450.00"},
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, RateLimit: time.Millisecond}, quietLogger())
	payouts, err := client.FetchPayouts("202601010101")
	require.NoError(t, err)
	require.Len(t, payouts.Win, 1)
	assert.Equal(t, 3, payouts.Win[0].HorseNumber)
	assert.True(t, payouts.Win[0].Payout.Equal(decimal.RequireFromString("450.00")))
}

func TestFetchPayoutsNotYetSettledIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, RateLimit: time.Millisecond}, quietLogger())
	_, err := client.FetchPayouts("202601010101")
	require.ErrorIs(t, err, domain.ErrNotYetSettled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPayoutsMalformedBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, RateLimit: time.Millisecond}, quietLogger())
	_, err := client.FetchPayouts("202601010101")
	require.ErrorIs(t, err, domain.ErrParseError)
}

func TestRateLimiterSpacesCalls(t *testing.T) {
	limiter := NewRateLimiter(10 * time.Millisecond)
	var slept time.Duration
	limiter.sleep = func(d time.Duration) { slept += d }

	limiter.Wait()
	limiter.Wait()
	assert.Greater(t, slept, time.Duration(0))
}
