package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/hooplytics/courtline/internal/models"
)

const statsSourceName = "stats_api"

// StatsAPIClient implements GameSource for the league stats API. Days
// already fetched are cached so repeated ingestion runs over
// overlapping ranges stay within the provider's request budget.
type StatsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	season     string
	enabled    bool
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// statsGame represents one game in the stats API scoreboard response.
type statsGame struct {
	GameID   string `json:"gameId"`
	GameDate string `json:"gameDate"`
	Status   string `json:"status"`
	Home     struct {
		Team       string   `json:"teamTricode"`
		Score      int      `json:"score"`
		Pace       float64  `json:"pace"`
		KeyPlayers []string `json:"keyPlayersOut"`
	} `json:"homeTeam"`
	Away struct {
		Team       string   `json:"teamTricode"`
		Score      int      `json:"score"`
		Pace       float64  `json:"pace"`
		KeyPlayers []string `json:"keyPlayersOut"`
	} `json:"awayTeam"`
}

type scoreboardResponse struct {
	Games []statsGame `json:"games"`
}

// NewStatsAPIClient creates a new stats API client
func NewStatsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, season string, cacheTTL time.Duration, logger *logrus.Logger) *StatsAPIClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &StatsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		season:     season,
		enabled:    baseURL != "",
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *StatsAPIClient) Name() string {
	return statsSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *StatsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchGames retrieves completed games within the date range, one
// scoreboard request per day.
func (c *StatsAPIClient) FetchGames(ctx context.Context, startDate, endDate time.Time) ([]models.GameRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "source disabled", ErrSourceDisabled)
	}

	var games []models.GameRecord
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		dayGames, err := c.fetchDay(ctx, day)
		if err != nil {
			return nil, err
		}
		games = append(games, dayGames...)
	}

	c.logger.WithFields(logrus.Fields{
		"source": statsSourceName,
		"games":  len(games),
		"from":   startDate.Format("2006-01-02"),
		"to":     endDate.Format("2006-01-02"),
	}).Info("Fetched games")

	return games, nil
}

func (c *StatsAPIClient) fetchDay(ctx context.Context, day time.Time) ([]models.GameRecord, error) {
	cacheKey := day.Format("2006-01-02")
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.GameRecord), nil
	}

	url := fmt.Sprintf("%s/scoreboard?date=%s&season=%s", c.baseURL, cacheKey, c.season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to fetch scoreboard", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewDataSourceError(statsSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(statsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(statsSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var sb scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "failed to parse scoreboard", err)
	}

	games := make([]models.GameRecord, 0, len(sb.Games))
	for _, g := range sb.Games {
		if g.Status != "Final" {
			continue
		}
		rec, err := convertStatsGame(g)
		if err != nil {
			c.logger.WithError(err).WithField("game_id", g.GameID).Warn("Skipping malformed game")
			continue
		}
		games = append(games, rec)
	}

	c.cache.Set(cacheKey, games, gocache.DefaultExpiration)
	return games, nil
}

func convertStatsGame(g statsGame) (models.GameRecord, error) {
	date, err := time.Parse("2006-01-02", g.GameDate)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("invalid game date %q: %w", g.GameDate, err)
	}
	if g.Home.Team == "" || g.Away.Team == "" {
		return models.GameRecord{}, fmt.Errorf("missing team tricode")
	}

	homeQualified := len(g.Home.KeyPlayers) == 0
	awayQualified := len(g.Away.KeyPlayers) == 0

	return models.GameRecord{
		ID:            g.GameID,
		Date:          date,
		HomeTeam:      g.Home.Team,
		AwayTeam:      g.Away.Team,
		HomeScore:     g.Home.Score,
		AwayScore:     g.Away.Score,
		HomeQualified: &homeQualified,
		AwayQualified: &awayQualified,
		HomePace:      g.Home.Pace,
		AwayPace:      g.Away.Pace,
	}, nil
}
