// Package oddsource is the OddsSource boundary: a thin read-only HTTP
// client over the odds vendor's query-string-authenticated API. It maps
// raw JSON into oddstypes.Event and surfaces the vendor's credit headers
// so the caller can drive the credit guard.
package oddsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// Client fetches sports and odds from the configured odds source.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	cache      *SportsCache
}

// New constructs a Client with a default 30s request timeout (a hard
// per-call wall-clock bound). sportsCache may be nil,
// in which case ListSports always fetches.
func New(baseURL, apiKey string, logger *zap.Logger, sportsCache *SportsCache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		cache:  sportsCache,
	}
}

// ListSports returns only the active sports, serving a cached
// response when one is fresh.
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	if c.cache != nil {
		if sports, ok := c.cache.get(); ok {
			return sports, nil
		}
	}

	RequestsTotal.WithLabelValues("list_sports").Inc()
	start := time.Now()
	defer func() { RequestDuration.WithLabelValues("list_sports").Observe(time.Since(start).Seconds()) }()

	body, _, err := c.get(ctx, "/v4/sports", nil)
	if err != nil {
		return nil, err
	}

	var raw []Sport
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, oddstypes.NewUpstreamError("decode sports response", err)
	}

	active := make([]Sport, 0, len(raw))
	for _, s := range raw {
		if s.Active {
			active = append(active, s)
		}
	}

	if c.cache != nil {
		c.cache.put(active)
	}

	return active, nil
}

// ListOdds fetches odds for one sport: regions (default "us"),
// markets (comma-joined subset of h2h/spreads/totals), and an optional
// bookmaker filter. Returns the parsed Events plus the credit accounting
// from that single response.
func (c *Client) ListOdds(ctx context.Context, sportKey string, regions, markets, bookmakers []string) ([]oddstypes.Event, CreditInfo, error) {
	RequestsTotal.WithLabelValues("list_odds").Inc()
	start := time.Now()
	defer func() { RequestDuration.WithLabelValues("list_odds").Observe(time.Since(start).Seconds()) }()

	if len(regions) == 0 {
		regions = []string{"us"}
	}
	if len(markets) == 0 {
		markets = []string{"h2h"}
	}

	params := url.Values{}
	params.Set("regions", strings.Join(regions, ","))
	params.Set("markets", strings.Join(markets, ","))
	if len(bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(bookmakers, ","))
	}

	body, credits, err := c.get(ctx, fmt.Sprintf("/v4/sports/%s/odds", sportKey), params)
	if err != nil {
		return nil, credits, err
	}

	var raw []rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, credits, oddstypes.NewUpstreamError("decode odds response", err)
	}

	events := make([]oddstypes.Event, 0, len(raw))
	for _, re := range raw {
		event, err := parseEvent(re)
		if err != nil {
			c.logger.Debug("skipping unparseable event",
				zap.String("event_id", re.ID),
				zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	return events, credits, nil
}

func parseEvent(re rawEvent) (oddstypes.Event, error) {
	commence, err := time.Parse(time.RFC3339, re.CommenceTime)
	if err != nil {
		return oddstypes.Event{}, fmt.Errorf("parse commence_time: %w", err)
	}

	bookmakers := make([]oddstypes.PerBookmakerQuote, 0, len(re.Bookmakers))
	for _, bm := range re.Bookmakers {
		lastUpdate, _ := time.Parse(time.RFC3339, bm.LastUpdate)

		markets := make([]oddstypes.MarketQuote, 0, len(bm.Markets))
		for _, m := range bm.Markets {
			outcomes := make([]oddstypes.Outcome, 0, len(m.Outcomes))
			for _, o := range m.Outcomes {
				outcomes = append(outcomes, oddstypes.Outcome{
					Name:  o.Name,
					Price: o.Price,
					Point: o.Point,
				})
			}
			markets = append(markets, oddstypes.MarketQuote{
				MarketType: oddstypes.MarketType(m.Key),
				Outcomes:   outcomes,
			})
		}

		bookmakers = append(bookmakers, oddstypes.PerBookmakerQuote{
			Bookmaker:  bm.Key,
			LastUpdate: lastUpdate,
			Markets:    markets,
		})
	}

	return oddstypes.Event{
		ID:           re.ID,
		Sport:        re.SportKey,
		CommenceTime: commence,
		HomeTeam:     re.HomeTeam,
		AwayTeam:     re.AwayTeam,
		Bookmakers:   bookmakers,
	}, nil
}

// get issues an authenticated GET request and maps the response to the
// error kinds: 401 -> AuthError, 429 -> RateLimited, any other
// non-2xx -> UpstreamError with the body attached.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, CreditInfo, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, CreditInfo{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		ErrorsTotal.WithLabelValues("network").Inc()
		return nil, CreditInfo{}, oddstypes.NewUpstreamError("request failed", err)
	}
	defer resp.Body.Close()

	credits := parseCredits(resp.Header)
	if credits.Remaining > 0 || resp.Header.Get("X-Requests-Remaining") != "" {
		CreditsRemaining.Set(float64(credits.Remaining))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, credits, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		ErrorsTotal.WithLabelValues("auth").Inc()
		return nil, credits, oddstypes.NewAuthError("odds source rejected credentials", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		ErrorsTotal.WithLabelValues("rate_limited").Inc()
		return nil, credits, oddstypes.NewRateLimited("odds source rate limited the request", nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		ErrorsTotal.WithLabelValues("upstream").Inc()
		return nil, credits, oddstypes.NewUpstreamError(
			fmt.Sprintf("odds source returned HTTP %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)),
		)
	}

	return body, credits, nil
}

func parseCredits(h http.Header) CreditInfo {
	info := CreditInfo{Remaining: -1, Used: -1}
	if v := h.Get("X-Requests-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.Remaining = n
		}
	}
	if v := h.Get("X-Requests-Used"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.Used = n
		}
	}
	return info
}
