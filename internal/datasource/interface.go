package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/hooplytics/courtline/internal/models"
)

// GameSource defines the interface for fetching completed games from an
// external provider.
type GameSource interface {
	// FetchGames retrieves completed games within the date range.
	FetchGames(ctx context.Context, startDate, endDate time.Time) ([]models.GameRecord, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// SpreadSource fetches closing point spreads keyed by matchup.
type SpreadSource interface {
	// FetchSpreads retrieves home-perspective spreads for games on one
	// date, keyed by MatchupKey.
	FetchSpreads(ctx context.Context, date time.Time) (map[string]float64, error)

	Name() string
	IsEnabled() bool
}

// MatchupKey joins the two sources: game feeds and odds feeds rarely
// share IDs, so spreads are matched on date and team names.
func MatchupKey(date time.Time, homeTeam, awayTeam string) string {
	return date.Format("2006-01-02") + ":" + awayTeam + "@" + homeTeam
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSourceDisabled       = errors.New("data source disabled")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
