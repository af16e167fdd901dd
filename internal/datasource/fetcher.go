package datasource

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/models"
)

// HistoricalFetcher turns finished fixtures from a Source into training
// records: season aggregates become ratings, prior results become form, and
// the final score becomes the target.
type HistoricalFetcher struct {
	source Source
	logger *logrus.Logger
}

// NewHistoricalFetcher creates a historical data fetcher over a source
func NewHistoricalFetcher(source Source, logger *logrus.Logger) (*HistoricalFetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("data source is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HistoricalFetcher{source: source, logger: logger}, nil
}

// FetchTrainingData collects up to maxMatches finished fixtures across the
// given leagues and converts each into a MatchRecord. Fixtures that cannot
// be converted are skipped with a warning.
func (h *HistoricalFetcher) FetchTrainingData(ctx context.Context, leagueIDs []int, season, maxMatches int) ([]models.MatchRecord, error) {
	if len(leagueIDs) == 0 {
		return nil, fmt.Errorf("at least one league ID is required")
	}
	if maxMatches <= 0 {
		return nil, fmt.Errorf("max matches must be positive, got %d", maxMatches)
	}

	h.logger.WithFields(logrus.Fields{
		"source":      h.source.Name(),
		"leagues":     leagueIDs,
		"season":      season,
		"max_matches": maxMatches,
	}).Info("Fetching historical training data")

	perLeague := maxMatches / len(leagueIDs)
	if perLeague == 0 {
		perLeague = 1
	}

	var records []models.MatchRecord
	for _, leagueID := range leagueIDs {
		fixtures, err := h.source.FetchFixtures(ctx, FixtureQuery{
			LeagueID: leagueID,
			Season:   season,
			Limit:    perLeague,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch fixtures for league %d: %w", leagueID, err)
		}

		for _, fixture := range fixtures {
			if len(records) >= maxMatches {
				break
			}

			record, err := h.buildRecord(ctx, leagueID, season, fixture)
			if err != nil {
				h.logger.WithFields(logrus.Fields{
					"fixture_id": fixture.SourceID,
					"error":      err.Error(),
				}).Warn("Skipping fixture")
				continue
			}

			records = append(records, *record)
			if len(records)%10 == 0 {
				h.logger.WithField("processed", len(records)).Info("Processed matches")
			}
		}

		if len(records) >= maxMatches {
			break
		}
	}

	h.logger.WithField("records", len(records)).Info("Historical fetch complete")
	return records, nil
}

// buildRecord converts one finished fixture into a training record
func (h *HistoricalFetcher) buildRecord(ctx context.Context, leagueID, season int, fixture Fixture) (*models.MatchRecord, error) {
	if !fixture.Finished {
		return nil, fmt.Errorf("fixture %d is not finished", fixture.SourceID)
	}
	if fixture.HomeID == 0 || fixture.AwayID == 0 {
		return nil, fmt.Errorf("fixture %d is missing team IDs", fixture.SourceID)
	}

	homeStats, err := h.source.TeamStatistics(ctx, fixture.HomeID, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("home statistics: %w", err)
	}
	awayStats, err := h.source.TeamStatistics(ctx, fixture.AwayID, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("away statistics: %w", err)
	}

	homeForm, err := h.source.RecentForm(ctx, fixture.HomeID, fixture.Kickoff)
	if err != nil {
		return nil, fmt.Errorf("home form: %w", err)
	}
	awayForm, err := h.source.RecentForm(ctx, fixture.AwayID, fixture.Kickoff)
	if err != nil {
		return nil, fmt.Errorf("away form: %w", err)
	}

	homeRng := rand.New(rand.NewSource(nameSeed(fixture.HomeName)))
	awayRng := rand.New(rand.NewSource(nameSeed(fixture.AwayName)))

	return &models.MatchRecord{
		HomeRatings: ConvertStatsToRatings(homeStats, homeRng),
		AwayRatings: ConvertStatsToRatings(awayStats, awayRng),
		HomeForm:    homeForm,
		AwayForm:    awayForm,
		HomeGoals:   clampGoals(fixture.HomeGoals),
		AwayGoals:   clampGoals(fixture.AwayGoals),
	}, nil
}

func clampGoals(goals int) int {
	if goals < 0 {
		return 0
	}
	if goals > models.MaxRawGoals {
		return models.MaxRawGoals
	}
	return goals
}
