package agent

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/footy-forecast/internal/models"
)

// FormatFormResults renders a form sequence as result letters, oldest first.
func FormatFormResults(form models.FormSequence) string {
	letters := make([]string, len(form))
	for i, points := range form {
		switch points {
		case models.FormWin:
			letters[i] = "W"
		case models.FormDraw:
			letters[i] = "D"
		default:
			letters[i] = "L"
		}
	}
	return strings.Join(letters, " ")
}

func buildReport(prediction *models.MatchPrediction, homeForm, awayForm models.FormSequence) string {
	var builder strings.Builder
	builder.WriteString("Match Prediction\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Match: %s vs %s\n", prediction.HomeTeam, prediction.AwayTeam))
	builder.WriteString(fmt.Sprintf("Predicted Score: %s %d - %d %s\n",
		prediction.HomeTeam, prediction.HomeScore, prediction.AwayScore, prediction.AwayTeam))
	builder.WriteString(fmt.Sprintf("Predicted Result: %s\n", prediction.Result))
	builder.WriteString("\nTeam Analysis\n")
	builder.WriteString(fmt.Sprintf("%s (Home): strength %.1f/100, form %s (%d pts)\n",
		prediction.HomeTeam, prediction.HomeTeamStrength, FormatFormResults(homeForm), prediction.HomeFormPoints))
	builder.WriteString(fmt.Sprintf("%s (Away): strength %.1f/100, form %s (%d pts)\n",
		prediction.AwayTeam, prediction.AwayTeamStrength, FormatFormResults(awayForm), prediction.AwayFormPoints))
	builder.WriteString("\nMatch Insights\n")
	builder.WriteString(fmt.Sprintf("Strength Advantage: %.1f pts to %s\n",
		math.Abs(prediction.StrengthAdvantage), advantageHolder(prediction.StrengthAdvantage > 0, prediction)))
	builder.WriteString(fmt.Sprintf("Form Advantage: %d pts to %s\n",
		abs(prediction.FormAdvantage), advantageHolder(prediction.FormAdvantage > 0, prediction)))
	return builder.String()
}

func advantageHolder(home bool, prediction *models.MatchPrediction) string {
	if home {
		return prediction.HomeTeam
	}
	return prediction.AwayTeam
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
