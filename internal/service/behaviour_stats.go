package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/pupil-dashboard/internal/models"
)

// DefaultPositiveTopN is how many positive reasons are listed before the rest collapse.
const DefaultPositiveTopN = 5

// SummariseBehaviour totals both tallies and ranks them by points, highest first.
// Positive reasons beyond topN collapse into a single "Other (N more)" row.
func SummariseBehaviour(tally models.BehaviourTally, topN int) models.BehaviourSummary {
	if topN <= 0 {
		topN = DefaultPositiveTopN
	}

	positive := rankReasons(tally.Positive)
	negative := rankReasons(tally.Negative)

	summary := models.BehaviourSummary{
		PositiveTotal: sumRows(positive),
		NegativeTotal: sumRows(negative),
		Negative:      negative,
	}

	if len(positive) > topN {
		rest := positive[topN:]
		summary.Positive = append(positive[:topN:topN], models.BehaviourRow{
			Label:  fmt.Sprintf("Other (%d more)", len(rest)),
			Points: sumRows(rest),
			Other:  true,
		})
	} else {
		summary.Positive = positive
	}
	return summary
}

// rankReasons orders by points descending; equal points fall back to the label.
func rankReasons(reasons map[string]int) []models.BehaviourRow {
	rows := make([]models.BehaviourRow, 0, len(reasons))
	for label, points := range reasons {
		rows = append(rows, models.BehaviourRow{Label: label, Points: points})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func sumRows(rows []models.BehaviourRow) int {
	total := 0
	for _, row := range rows {
		total += row.Points
	}
	return total
}
