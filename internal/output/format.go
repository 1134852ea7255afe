package output

import (
	"fmt"
	"math"
)

// FormatWinRate formats a win rate fraction as a percentage.
func FormatWinRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// FormatRating formats a Glicko rating for display.
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.0f", rating)
}

// FormatDelta formats a rating change with an explicit sign.
func FormatDelta(delta float64) string {
	rounded := int(math.Round(delta))
	if rounded > 0 {
		return fmt.Sprintf("+%d", rounded)
	}
	return fmt.Sprintf("%d", rounded)
}

// FormatGames formats an estimated (fractional) game count.
func FormatGames(games float64) string {
	return fmt.Sprintf("%.1f", games)
}
