// Package contractsource is a read-only HTTP client over a Kalshi-style
// binary event-contract market listing, used in cross-platform mode. It
// fetches open markets for a series and pairs same-event markets into
// ContractGames.
package contractsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// Client fetches and pairs binary-contract markets into ContractGames.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// New constructs a Client with the same 30s call timeout as the odds
// source boundary.
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListGames fetches every open market in seriesTicker and pairs same-event
// markets into ContractGames. A market whose event_ticker has no sibling,
// whose title can't be split on " at " / " Winner?", or whose
// yes_sub_title can't be matched to either half of the title is skipped
// and logged at debug — the design consumes only what it can pair
// unambiguously.
func (c *Client) ListGames(ctx context.Context, seriesTicker string) ([]oddstypes.ContractGame, error) {
	RequestsTotal.Inc()
	start := time.Now()
	defer func() { RequestDuration.Observe(time.Since(start).Seconds()) }()

	params := url.Values{}
	params.Set("series_ticker", seriesTicker)
	params.Set("status", "open")

	body, err := c.get(ctx, "/markets", params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Markets []rawMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, oddstypes.NewUpstreamError("decode contract markets response", err)
	}

	byEvent := make(map[string][]rawMarket)
	for _, m := range payload.Markets {
		byEvent[m.EventTicker] = append(byEvent[m.EventTicker], m)
	}

	games := make([]oddstypes.ContractGame, 0, len(byEvent))
	for eventTicker, markets := range byEvent {
		game, ok := pairGame(eventTicker, markets)
		if !ok {
			SkippedTotal.Inc()
			c.logger.Debug("skipping unpairable contract event", zap.String("event_ticker", eventTicker))
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// pairGame builds one ContractGame from the raw markets sharing an
// event_ticker. Exactly two markets are expected: one whose yes_sub_title
// names the away team, one whose yes_sub_title names the home team.
func pairGame(eventTicker string, markets []rawMarket) (oddstypes.ContractGame, bool) {
	if len(markets) != 2 {
		return oddstypes.ContractGame{}, false
	}

	awayFull, homeFull, ok := splitTitle(markets[0].Title)
	if !ok {
		return oddstypes.ContractGame{}, false
	}

	closeTime, err := time.Parse(time.RFC3339, markets[0].CloseTime)
	if err != nil {
		return oddstypes.ContractGame{}, false
	}

	var homeMarket, awayMarket *rawMarket
	for i := range markets {
		switch {
		case strings.EqualFold(markets[i].YesSubTitle, homeFull):
			homeMarket = &markets[i]
		case strings.EqualFold(markets[i].YesSubTitle, awayFull):
			awayMarket = &markets[i]
		}
	}
	if homeMarket == nil || awayMarket == nil {
		return oddstypes.ContractGame{}, false
	}

	return oddstypes.ContractGame{
		EventTicker:  eventTicker,
		SeriesTicker: markets[0].SeriesTicker,
		HomeShort:    shortName(homeFull),
		HomeFull:     homeFull,
		AwayShort:    shortName(awayFull),
		AwayFull:     awayFull,
		Home: oddstypes.ContractMarket{
			Ticker:    homeMarket.Ticker,
			YesBid:    homeMarket.YesBid,
			YesAsk:    homeMarket.YesAsk,
			Volume24h: homeMarket.Volume24h,
		},
		Away: oddstypes.ContractMarket{
			Ticker:    awayMarket.Ticker,
			YesBid:    awayMarket.YesBid,
			YesAsk:    awayMarket.YesAsk,
			Volume24h: awayMarket.Volume24h,
		},
		CloseTime: closeTime,
	}, true
}

// splitTitle parses the "Away at Home Winner?" title format the
// contract source serves.
func splitTitle(title string) (away, home string, ok bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(title), " Winner?")
	if trimmed == title {
		return "", "", false
	}
	parts := strings.SplitN(trimmed, " at ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// shortName takes the last whitespace-delimited token of a full team name
// as its short form (e.g. "Kansas City Chiefs" -> "Chiefs"), the same
// convention the team lookup table in internal/crossplatform keys on.
func shortName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full
	}
	return parts[len(parts)-1]
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		ErrorsTotal.WithLabelValues("network").Inc()
		return nil, oddstypes.NewUpstreamError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		ErrorsTotal.WithLabelValues("auth").Inc()
		return nil, oddstypes.NewAuthError("contract source rejected credentials", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		ErrorsTotal.WithLabelValues("rate_limited").Inc()
		return nil, oddstypes.NewRateLimited("contract source rate limited the request", nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		ErrorsTotal.WithLabelValues("upstream").Inc()
		return nil, oddstypes.NewUpstreamError(
			fmt.Sprintf("contract source returned HTTP %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)),
		)
	}

	return body, nil
}
