package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const oddsSourceName = "odds_api"

// OddsAPIClient implements SpreadSource against an Odds-API style
// provider: events carrying per-bookmaker spread markets.
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	bookmaker  string
	enabled    bool
	logger     *logrus.Logger
}

// oddsEvent represents one event in the odds API response.
type oddsEvent struct {
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string          `json:"name"`
				Point float64         `json:"point"`
				Price decimal.Decimal `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// NewOddsAPIClient creates a new odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, bookmaker string, logger *logrus.Logger) *OddsAPIClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if bookmaker == "" {
		bookmaker = "draftkings"
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		bookmaker:  bookmaker,
		enabled:    baseURL != "" && apiKey != "",
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *OddsAPIClient) Name() string {
	return oddsSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *OddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchSpreads retrieves home-perspective closing spreads for one date,
// keyed by MatchupKey. Events missing the configured bookmaker or a
// spreads market are skipped with a warning rather than failing the
// whole day.
func (c *OddsAPIClient) FetchSpreads(ctx context.Context, date time.Time) (map[string]float64, error) {
	if !c.enabled {
		return nil, NewDataSourceError(oddsSourceName, ErrCodeNetworkError, "source disabled", ErrSourceDisabled)
	}

	endpoint := fmt.Sprintf("%s/sports/basketball_nba/odds?apiKey=%s&markets=spreads&bookmakers=%s&date=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.bookmaker), date.Format("2006-01-02"))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, NewDataSourceError(oddsSourceName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewDataSourceError(oddsSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(oddsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(oddsSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var events []oddsEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewDataSourceError(oddsSourceName, ErrCodeInvalidData, "failed to parse odds response", err)
	}

	spreads := make(map[string]float64, len(events))
	for _, ev := range events {
		point, ok := c.homeSpread(ev)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"home": ev.HomeTeam,
				"away": ev.AwayTeam,
			}).Warn("No spread market for event")
			continue
		}
		spreads[MatchupKey(ev.CommenceTime, ev.HomeTeam, ev.AwayTeam)] = point
	}
	return spreads, nil
}

// homeSpread extracts the home team's handicap from the configured
// bookmaker's spreads market.
func (c *OddsAPIClient) homeSpread(ev oddsEvent) (float64, bool) {
	for _, bm := range ev.Bookmakers {
		if bm.Key != c.bookmaker {
			continue
		}
		for _, market := range bm.Markets {
			if market.Key != "spreads" {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Name == ev.HomeTeam && outcome.Price.IsPositive() {
					return outcome.Point, true
				}
			}
		}
	}
	return 0, false
}
