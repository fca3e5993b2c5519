// Package fetcher retrieves official settled payout tables for a race
// from the racing authority's results feed, guarded by a rate limiter,
// a fixed retry/backoff schedule, and a circuit breaker.
package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/tndhk/keiba-core/internal/domain"
)

// backoffSchedule is the fixed per-attempt delay before a retry,
// applied only on the retryable status codes below.
var backoffSchedule = []time.Duration{5 * time.Second, 10 * time.Second, 30 * time.Second}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

// Client is the public PayoutFetcher implementation. It wraps an
// unexported transport so the retry/circuit-breaker plumbing stays out
// of the caller-facing surface.
type Client struct {
	transport *transport
}

// Config configures a Client's endpoint and resilience knobs.
type Config struct {
	BaseURL       string
	HTTPTimeout   time.Duration
	RateLimit     time.Duration
	BreakerName   string
}

// New builds a Client. Defaults: 30s HTTP timeout, one request/second.
func New(cfg Config, logger *logrus.Logger) *Client {
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = time.Second
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "payout-fetcher"
	}

	breakerSettings := gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "payout_fetcher",
				"breaker":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("circuit breaker state changed")
		},
	}

	return &Client{
		transport: &transport{
			httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
			baseURL:     cfg.BaseURL,
			limiter:     NewRateLimiter(cfg.RateLimit),
			breaker:     gobreaker.NewCircuitBreaker(breakerSettings),
			logger:      logger,
		},
	}
}

// FetchPayouts retrieves every payout pool settled for raceID.
func (c *Client) FetchPayouts(raceID string) (*domain.RacePayouts, error) {
	return c.transport.fetch(raceID)
}

// transport is the unexported HTTP/retry/breaker implementation behind
// Client's public PayoutFetcher surface.
type transport struct {
	httpClient *http.Client
	baseURL    string
	limiter    *RateLimiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func (t *transport) fetch(raceID string) (*domain.RacePayouts, error) {
	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.fetchWithRetry(raceID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.RacePayouts), nil
}

func (t *transport) fetchWithRetry(raceID string) (*domain.RacePayouts, error) {
	var lastErr error

	attempts := len(backoffSchedule) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoffSchedule[attempt-1])
		}

		t.limiter.Wait()

		payouts, retryable, err := t.doRequest(raceID)
		if err == nil {
			return payouts, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		t.logger.WithFields(logrus.Fields{
			"race_id": raceID,
			"attempt": attempt + 1,
		}).Warn("payout fetch failed, retrying")
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrRetryExhausted, lastErr)
}

func (t *transport) doRequest(raceID string) (payouts *domain.RacePayouts, retryable bool, err error) {
	url := fmt.Sprintf("%s/races/%s/payouts", t.baseURL, raceID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrNetworkError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, domain.ErrNotYetSettled
	}
	if isRetryableStatus(resp.StatusCode) {
		return nil, true, fmt.Errorf("%w: status %d", domain.ErrNetworkError, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: status %d", domain.ErrNetworkError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrNetworkError, err)
	}

	var wire wirePayouts
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrParseError, err)
	}

	return wire.toDomain(raceID), false, nil
}

// wirePayouts is the JSON shape of the results feed's payout response.
type wirePayouts struct {
	Place []struct {
		HorseNumber int    `json:"horse_number"`
		Payout      string `json:"payout"`
	} `json:"place"`
	Win []struct {
		HorseNumber int    `json:"horse_number"`
		Payout      string `json:"payout"`
	} `json:"win"`
	Quinella []struct {
		HorseNumbers [2]int `json:"horse_numbers"`
		Payout       string `json:"payout"`
	} `json:"quinella"`
	Trio []struct {
		HorseNumbers [3]int `json:"horse_numbers"`
		Payout       string `json:"payout"`
	} `json:"trio"`
}

func (w wirePayouts) toDomain(raceID string) *domain.RacePayouts {
	out := &domain.RacePayouts{RaceID: raceID}

	for _, p := range w.Place {
		out.Place = append(out.Place, domain.PlacePayout{HorseNumber: p.HorseNumber, Payout: parseDecimal(p.Payout)})
	}
	for _, p := range w.Win {
		out.Win = append(out.Win, domain.WinPayout{HorseNumber: p.HorseNumber, Payout: parseDecimal(p.Payout)})
	}
	for _, p := range w.Quinella {
		out.Quinella = append(out.Quinella, domain.QuinellaPayout{HorseNumbers: p.HorseNumbers, Payout: parseDecimal(p.Payout)})
	}
	for _, p := range w.Trio {
		out.Trio = append(out.Trio, domain.TrioPayout{HorseNumbers: p.HorseNumbers, Payout: parseDecimal(p.Payout)})
	}

	return out
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
