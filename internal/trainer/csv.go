package trainer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/footy-forecast/internal/models"
)

// WriteDatasetCSV exports match records so a dataset can be inspected or fed
// back in with ReadDatasetCSV. Ratings keep their full float precision.
func WriteDatasetCSV(records []models.MatchRecord, path string) error {
	if len(records) == 0 {
		return models.ErrEmptyDataset
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(datasetHeader()); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for i, record := range records {
		if err := w.Write(datasetRow(record)); err != nil {
			return fmt.Errorf("failed to write dataset row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return f.Close()
}

// ReadDatasetCSV loads match records written by WriteDatasetCSV, validating
// every row against the rating and form constraints.
func ReadDatasetCSV(path string) ([]models.MatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	want := datasetHeader()
	if len(header) != len(want) {
		return nil, fmt.Errorf("dataset has %d columns, want %d", len(header), len(want))
	}

	var records []models.MatchRecord
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}
		line++
		record, err := parseDatasetRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, models.ErrEmptyDataset
	}
	return records, nil
}

func datasetHeader() []string {
	header := make([]string, 0, 2*models.TeamSize+2*models.FormLength+2)
	for i := 0; i < models.TeamSize; i++ {
		header = append(header, fmt.Sprintf("h%d", i+1))
	}
	for i := 0; i < models.TeamSize; i++ {
		header = append(header, fmt.Sprintf("a%d", i+1))
	}
	for i := 0; i < models.FormLength; i++ {
		header = append(header, fmt.Sprintf("hf%d", i+1))
	}
	for i := 0; i < models.FormLength; i++ {
		header = append(header, fmt.Sprintf("af%d", i+1))
	}
	return append(header, "home_goals", "away_goals")
}

func datasetRow(record models.MatchRecord) []string {
	row := make([]string, 0, 2*models.TeamSize+2*models.FormLength+2)
	for _, v := range record.HomeRatings {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, v := range record.AwayRatings {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, v := range record.HomeForm {
		row = append(row, strconv.Itoa(v))
	}
	for _, v := range record.AwayForm {
		row = append(row, strconv.Itoa(v))
	}
	row = append(row, strconv.Itoa(record.HomeGoals))
	return append(row, strconv.Itoa(record.AwayGoals))
}

func parseDatasetRow(row []string) (models.MatchRecord, error) {
	want := 2*models.TeamSize + 2*models.FormLength + 2
	if len(row) != want {
		return models.MatchRecord{}, fmt.Errorf("row has %d columns, want %d", len(row), want)
	}

	pos := 0
	readRatings := func(field string) (models.PlayerRatingVector, error) {
		ratings := make(models.PlayerRatingVector, models.TeamSize)
		for i := range ratings {
			v, err := strconv.ParseFloat(row[pos], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", field, row[pos])
			}
			ratings[i] = v
			pos++
		}
		return ratings, models.ValidateRatings(field, ratings)
	}
	readForm := func(field string) (models.FormSequence, error) {
		form := make(models.FormSequence, models.FormLength)
		for i := range form {
			v, err := strconv.Atoi(row[pos])
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", field, row[pos])
			}
			form[i] = v
			pos++
		}
		return form, models.ValidateForm(field, form)
	}

	var record models.MatchRecord
	var err error
	if record.HomeRatings, err = readRatings("home_ratings"); err != nil {
		return models.MatchRecord{}, err
	}
	if record.AwayRatings, err = readRatings("away_ratings"); err != nil {
		return models.MatchRecord{}, err
	}
	if record.HomeForm, err = readForm("home_form"); err != nil {
		return models.MatchRecord{}, err
	}
	if record.AwayForm, err = readForm("away_form"); err != nil {
		return models.MatchRecord{}, err
	}

	homeGoals, err := strconv.Atoi(row[pos])
	if err != nil {
		return models.MatchRecord{}, fmt.Errorf("invalid home_goals value %q", row[pos])
	}
	pos++
	awayGoals, err := strconv.Atoi(row[pos])
	if err != nil {
		return models.MatchRecord{}, fmt.Errorf("invalid away_goals value %q", row[pos])
	}

	record.HomeGoals = clampInt(homeGoals, 0, models.MaxRawGoals)
	record.AwayGoals = clampInt(awayGoals, 0, models.MaxRawGoals)
	return record, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
