package models

import (
	"errors"
	"strings"
	"testing"
)

func validRatings() PlayerRatingVector {
	return PlayerRatingVector{88, 90, 87, 92, 89, 86, 91, 88, 90, 87, 93}
}

func TestValidateRatings(t *testing.T) {
	tests := []struct {
		name       string
		ratings    PlayerRatingVector
		wantErr    bool
		wantInMsg  string
	}{
		{name: "valid eleven", ratings: validRatings(), wantErr: false},
		{name: "boundary values", ratings: PlayerRatingVector{50, 99, 50, 99, 50, 99, 50, 99, 50, 99, 50}, wantErr: false},
		{name: "ten values", ratings: validRatings()[:10], wantErr: true, wantInMsg: "exactly 11 values, got 10"},
		{name: "twelve values", ratings: append(validRatings(), 80), wantErr: true, wantInMsg: "exactly 11 values, got 12"},
		{name: "below minimum", ratings: PlayerRatingVector{49.5, 90, 87, 92, 89, 86, 91, 88, 90, 87, 93}, wantErr: true, wantInMsg: "between 50 and 99, got 49.50"},
		{name: "above maximum", ratings: PlayerRatingVector{88, 90, 87, 92, 89, 86, 91, 88, 90, 87, 99.1}, wantErr: true, wantInMsg: "between 50 and 99, got 99.10"},
		{name: "empty", ratings: PlayerRatingVector{}, wantErr: true, wantInMsg: "got 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRatings("home_ratings", tt.ratings)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected validation error, got nil")
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
				if verr.Field != "home_ratings" {
					t.Errorf("expected field home_ratings, got %s", verr.Field)
				}
				if !strings.Contains(err.Error(), tt.wantInMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantInMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name      string
		form      FormSequence
		wantErr   bool
		wantInMsg string
	}{
		{name: "all wins", form: FormSequence{3, 3, 3, 3, 3}, wantErr: false},
		{name: "mixed", form: FormSequence{3, 1, 0, 3, 1}, wantErr: false},
		{name: "four values", form: FormSequence{3, 1, 0, 3}, wantErr: true, wantInMsg: "exactly 5 values, got 4"},
		{name: "six values", form: FormSequence{3, 1, 0, 3, 1, 1}, wantErr: true, wantInMsg: "exactly 5 values, got 6"},
		{name: "two points invalid", form: FormSequence{3, 1, 2, 3, 1}, wantErr: true, wantInMsg: "one of 0, 1, 3, got 2"},
		{name: "negative", form: FormSequence{3, 1, -1, 3, 1}, wantErr: true, wantInMsg: "got -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForm("away_form", tt.form)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantInMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantInMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRatingVectorMean(t *testing.T) {
	r := PlayerRatingVector{80, 90}
	if got := r.Mean(); got != 85 {
		t.Errorf("expected mean 85, got %v", got)
	}
	if got := (PlayerRatingVector{}).Mean(); got != 0 {
		t.Errorf("expected zero mean for empty vector, got %v", got)
	}
}

func TestFormTotalPoints(t *testing.T) {
	if got := (FormSequence{3, 3, 1, 3, 3}).TotalPoints(); got != 13 {
		t.Errorf("expected 13 points, got %d", got)
	}
	if got := (FormSequence{3, 1, 0, 3, 1}).TotalPoints(); got != 8 {
		t.Errorf("expected 8 points, got %d", got)
	}
}
