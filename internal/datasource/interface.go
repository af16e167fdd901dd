// Package datasource fetches football team and fixture data from external
// providers and normalizes it into the rating and form inputs the prediction
// models consume.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Source defines the interface for fetching football data from external providers
type Source interface {
	// FetchTeam retrieves ratings and recent form for a team by name
	FetchTeam(ctx context.Context, name string) (*TeamData, error)

	// FetchFixtures retrieves finished fixtures matching the query
	FetchFixtures(ctx context.Context, query FixtureQuery) ([]Fixture, error)

	// TeamStatistics retrieves season aggregates for a team
	TeamStatistics(ctx context.Context, teamID, leagueID, season int) (*TeamStatistics, error)

	// RecentForm retrieves a team's last five results before the given time
	RecentForm(ctx context.Context, teamID int, before time.Time) (models.FormSequence, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// TeamData represents normalized team data from any data source
type TeamData struct {
	SourceID  int                       `json:"source_id"`
	Name      string                    `json:"name"`
	Ratings   models.PlayerRatingVector `json:"ratings"`
	Form      models.FormSequence       `json:"form"`
	Source    string                    `json:"source"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// TeamStatistics represents season aggregates for one team
type TeamStatistics struct {
	TeamID       int `json:"team_id"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

// TotalMatches returns the number of matches covered by the aggregates
func (s *TeamStatistics) TotalMatches() int {
	return s.Wins + s.Draws + s.Losses
}

// Fixture represents a normalized fixture from any data source
type Fixture struct {
	SourceID  int       `json:"source_id"`
	LeagueID  int       `json:"league_id"`
	Season    int       `json:"season"`
	HomeID    int       `json:"home_id"`
	HomeName  string    `json:"home_name"`
	AwayID    int       `json:"away_id"`
	AwayName  string    `json:"away_name"`
	HomeGoals int       `json:"home_goals"`
	AwayGoals int       `json:"away_goals"`
	Kickoff   time.Time `json:"kickoff"`
	Finished  bool      `json:"finished"`
}

// FixtureQuery selects fixtures to fetch. A zero Date queries by league and
// season; a set Date queries that day across leagues and filters client-side.
type FixtureQuery struct {
	LeagueID int
	Season   int
	Date     time.Time
	Limit    int
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

// Unwrap exposes the underlying error so callers can match sentinels with errors.Is
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
	ErrCodeDisabled             = "source_disabled"
)

// Sentinel errors carried inside DataSourceError for errors.Is matching
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
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

// disabledError is the error every source returns when called while disabled
func disabledError(source string) DataSourceError {
	return NewDataSourceError(source, ErrCodeDisabled, "data source disabled", ErrSourceDisabled)
}
