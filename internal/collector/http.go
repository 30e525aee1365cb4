package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockScreener/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerFailures is the number of consecutive failed fetches that opens the
// breaker. While open, Load fails fast with gobreaker.ErrOpenState.
const BreakerFailures = 3

// HTTPLoader fetches the JSON snapshot from a data service.
type HTTPLoader struct {
	URL    string
	APIKey string
	Client *http.Client

	breaker *gobreaker.CircuitBreaker
}

// NewHTTPLoader creates a loader with optional proxy support.
func NewHTTPLoader(snapshotURL, apiKey, proxyURL string) *HTTPLoader {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPLoader{
		URL:    snapshotURL,
		APIKey: apiKey,
		Client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		breaker: newBreaker("snapshot"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state changed")
		},
	})
}

func (h *HTTPLoader) Name() string { return "http" }

func (h *HTTPLoader) Load(ctx context.Context) ([]*model.Row, error) {
	if h.breaker == nil {
		return h.fetch(ctx)
	}
	rows, err := h.breaker.Execute(func() (interface{}, error) { return h.fetch(ctx) })
	if err != nil {
		return nil, err
	}
	return rows.([]*model.Row), nil
}

func (h *HTTPLoader) fetch(ctx context.Context) ([]*model.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch snapshot: status %d, body: %s", resp.StatusCode, string(body))
	}
	return decodeSnapshot(resp.Body)
}
