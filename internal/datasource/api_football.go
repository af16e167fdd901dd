package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/models"
)

const (
	apiFootballName        = "api_football"
	defaultAPIFootballHost = "v3.football.api-sports.io"
	defaultLeagueID        = 39 // Premier League

	teamCacheTTL     = 15 * time.Minute
	teamCacheCleanup = 30 * time.Minute
)

// APIFootballClient implements Source against the API-Football v3 REST API
type APIFootballClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	host       string
	apiKey     string
	enabled    bool
	cache      *cache.Cache
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAPIFootballClient creates a new API-Football client
func NewAPIFootballClient(httpClient *RateLimitedHTTPClient, host, apiKey string, enabled bool, logger *logrus.Logger) *APIFootballClient {
	if host == "" {
		host = defaultAPIFootballHost
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &APIFootballClient{
		httpClient: httpClient,
		baseURL:    "https://" + host,
		host:       host,
		apiKey:     apiKey,
		enabled:    enabled,
		cache:      cache.New(teamCacheTTL, teamCacheCleanup),
		logger:     logger,
		now:        time.Now,
	}
}

// Name returns the data source name
func (c *APIFootballClient) Name() string {
	return apiFootballName
}

// IsEnabled returns whether this data source is enabled
func (c *APIFootballClient) IsEnabled() bool {
	return c.enabled
}

// apiEnvelope is the common wrapper around every API-Football response. Both
// errors and response vary in shape between endpoints, so they stay raw until
// the caller decodes them.
type apiEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Response json.RawMessage `json:"response"`
}

type apiTeamEntry struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

type apiStatistics struct {
	Fixtures struct {
		Wins  apiSideCount `json:"wins"`
		Draws apiSideCount `json:"draws"`
		Loses apiSideCount `json:"loses"`
	} `json:"fixtures"`
	Goals struct {
		For     apiGoalAggregate `json:"for"`
		Against apiGoalAggregate `json:"against"`
	} `json:"goals"`
}

type apiSideCount struct {
	Total int `json:"total"`
}

type apiGoalAggregate struct {
	Total apiSideCount `json:"total"`
}

type apiFixture struct {
	Fixture struct {
		ID     int    `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int `json:"id"`
		Season int `json:"season"`
	} `json:"league"`
	Teams struct {
		Home apiTeamRef `json:"home"`
		Away apiTeamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type apiTeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FetchTeam retrieves ratings and recent form for a team by name. Results
// are cached; statistics or fixture failures degrade to moderate defaults so
// a reachable team always yields usable inputs.
func (c *APIFootballClient) FetchTeam(ctx context.Context, name string) (*TeamData, error) {
	if !c.enabled {
		return nil, disabledError(apiFootballName)
	}

	cacheKey := "team_" + strings.ToLower(name)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*TeamData), nil
	}

	teamID, officialName, err := c.searchTeam(ctx, name)
	if err != nil {
		return nil, err
	}

	season := CurrentSeason(c.now())

	stats, err := c.TeamStatistics(ctx, teamID, defaultLeagueID, season)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"team":  officialName,
			"error": err.Error(),
		}).Warn("Statistics unavailable, using fallback ratings")
		stats = nil
	}

	form, err := c.RecentForm(ctx, teamID, time.Time{})
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"team":  officialName,
			"error": err.Error(),
		}).Warn("Recent fixtures unavailable, using neutral form")
		form = neutralForm()
	}

	rng := rand.New(rand.NewSource(nameSeed(officialName)))
	data := &TeamData{
		SourceID:  teamID,
		Name:      officialName,
		Ratings:   ConvertStatsToRatings(stats, rng),
		Form:      form,
		Source:    apiFootballName,
		FetchedAt: c.now().UTC(),
	}

	c.cache.Set(cacheKey, data, cache.DefaultExpiration)
	return data, nil
}

// TeamStatistics retrieves season aggregates for a team
func (c *APIFootballClient) TeamStatistics(ctx context.Context, teamID, leagueID, season int) (*TeamStatistics, error) {
	if !c.enabled {
		return nil, disabledError(apiFootballName)
	}

	endpoint := fmt.Sprintf("%s/teams/statistics?team=%d&league=%d&season=%d", c.baseURL, teamID, leagueID, season)

	var envelope apiEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	if msg := apiErrorMessage(envelope.Errors); msg != "" {
		return nil, NewDataSourceError(apiFootballName, ErrCodeInvalidData, msg, ErrInvalidData)
	}

	var stats apiStatistics
	if !decodeObject(envelope.Response, &stats) {
		return nil, NewDataSourceError(apiFootballName, ErrCodeNotFound, fmt.Sprintf("no statistics for team %d", teamID), ErrNotFound)
	}

	return &TeamStatistics{
		TeamID:       teamID,
		Wins:         stats.Fixtures.Wins.Total,
		Draws:        stats.Fixtures.Draws.Total,
		Losses:       stats.Fixtures.Loses.Total,
		GoalsFor:     stats.Goals.For.Total.Total,
		GoalsAgainst: stats.Goals.Against.Total.Total,
	}, nil
}

// RecentForm retrieves a team's last five finished results. Fixtures after
// the cutoff are ignored so historical training rows never leak the match
// being predicted.
func (c *APIFootballClient) RecentForm(ctx context.Context, teamID int, before time.Time) (models.FormSequence, error) {
	if !c.enabled {
		return nil, disabledError(apiFootballName)
	}

	endpoint := fmt.Sprintf("%s/fixtures?team=%d&last=%d&status=FT", c.baseURL, teamID, models.FormLength)

	fixtures, err := c.fetchFixtureList(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if !before.IsZero() {
		kept := fixtures[:0]
		for _, f := range fixtures {
			if !f.Kickoff.After(before) {
				kept = append(kept, f)
			}
		}
		fixtures = kept
	}

	return FormFromFixtures(fixtures, teamID), nil
}

// FetchFixtures retrieves finished fixtures matching the query
func (c *APIFootballClient) FetchFixtures(ctx context.Context, query FixtureQuery) ([]Fixture, error) {
	if !c.enabled {
		return nil, disabledError(apiFootballName)
	}

	var endpoint string
	if !query.Date.IsZero() {
		endpoint = fmt.Sprintf("%s/fixtures?date=%s&status=FT", c.baseURL, query.Date.Format("2006-01-02"))
	} else {
		endpoint = fmt.Sprintf("%s/fixtures?league=%d&season=%d&status=FT", c.baseURL, query.LeagueID, query.Season)
	}

	fixtures, err := c.fetchFixtureList(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// Date queries span all leagues; filter client-side
	if !query.Date.IsZero() && query.LeagueID != 0 {
		kept := fixtures[:0]
		for _, f := range fixtures {
			if f.LeagueID == query.LeagueID {
				kept = append(kept, f)
			}
		}
		fixtures = kept
	}

	if query.Limit > 0 && len(fixtures) > query.Limit {
		fixtures = fixtures[:query.Limit]
	}

	return fixtures, nil
}

// searchTeam resolves a team name to the provider's ID and official name
func (c *APIFootballClient) searchTeam(ctx context.Context, name string) (int, string, error) {
	endpoint := fmt.Sprintf("%s/teams?name=%s", c.baseURL, url.QueryEscape(name))

	var envelope apiEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return 0, "", err
	}
	if msg := apiErrorMessage(envelope.Errors); msg != "" {
		return 0, "", NewDataSourceError(apiFootballName, ErrCodeInvalidData, msg, ErrInvalidData)
	}

	var entries []apiTeamEntry
	if len(envelope.Response) > 0 {
		if err := json.Unmarshal(envelope.Response, &entries); err != nil {
			return 0, "", NewDataSourceError(apiFootballName, ErrCodeInvalidData, "failed to parse team search response", err)
		}
	}
	if len(entries) == 0 {
		return 0, "", NewDataSourceError(apiFootballName, ErrCodeNotFound, fmt.Sprintf("team %q not found", name), ErrNotFound)
	}

	return entries[0].Team.ID, entries[0].Team.Name, nil
}

// fetchFixtureList fetches and normalizes a fixture list endpoint
func (c *APIFootballClient) fetchFixtureList(ctx context.Context, endpoint string) ([]Fixture, error) {
	var envelope apiEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	if msg := apiErrorMessage(envelope.Errors); msg != "" {
		return nil, NewDataSourceError(apiFootballName, ErrCodeInvalidData, msg, ErrInvalidData)
	}

	var raw []apiFixture
	if len(envelope.Response) > 0 {
		if err := json.Unmarshal(envelope.Response, &raw); err != nil {
			return nil, NewDataSourceError(apiFootballName, ErrCodeInvalidData, "failed to parse fixtures response", err)
		}
	}

	fixtures := make([]Fixture, 0, len(raw))
	for _, f := range raw {
		kickoff, err := time.Parse(time.RFC3339, f.Fixture.Date)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"fixture_id": f.Fixture.ID,
				"date":       f.Fixture.Date,
			}).Warn("Skipping fixture with unparseable date")
			continue
		}

		fixture := Fixture{
			SourceID: f.Fixture.ID,
			LeagueID: f.League.ID,
			Season:   f.League.Season,
			HomeID:   f.Teams.Home.ID,
			HomeName: f.Teams.Home.Name,
			AwayID:   f.Teams.Away.ID,
			AwayName: f.Teams.Away.Name,
			Kickoff:  kickoff,
			Finished: finishedStatus(f.Fixture.Status.Short),
		}
		if f.Goals.Home != nil {
			fixture.HomeGoals = *f.Goals.Home
		}
		if f.Goals.Away != nil {
			fixture.AwayGoals = *f.Goals.Away
		}

		fixtures = append(fixtures, fixture)
	}

	return fixtures, nil
}

// getJSON executes an authenticated GET and decodes the response body
func (c *APIFootballClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewDataSourceError(apiFootballName, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(apiFootballName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(apiFootballName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(apiFootballName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(apiFootballName, ErrCodeNotFound, "resource not found", ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(apiFootballName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body)), ErrServerError)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(apiFootballName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// finishedStatus reports whether a fixture status marks a completed match
func finishedStatus(short string) bool {
	switch short {
	case "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// apiErrorMessage extracts provider error text. API-Football sends errors as
// an object on failure and an empty array on success.
func apiErrorMessage(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	var fields map[string]string
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		return ""
	}

	msg := ""
	for key, value := range fields {
		if msg != "" {
			msg += "; "
		}
		msg += key + ": " + value
	}
	return msg
}

// decodeObject decodes raw JSON into out when it holds an object, reporting
// whether anything was decoded. Empty arrays stand in for "no data" on
// object endpoints.
func decodeObject(raw json.RawMessage, out any) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, out) == nil
}

func neutralForm() models.FormSequence {
	form := make(models.FormSequence, models.FormLength)
	for i := range form {
		form[i] = models.FormDraw
	}
	return form
}
