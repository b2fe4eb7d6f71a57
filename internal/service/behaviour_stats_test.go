package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pupil-dashboard/internal/models"
)

func TestSummariseBehaviourCollapsesPositiveTail(t *testing.T) {
	positive := map[string]int{}
	for i := 1; i <= 9; i++ {
		positive[fmt.Sprintf("Reason %d", i)] = i
	}
	negative := map[string]int{"Late to class": 2, "No homework": 3, "Talking": 1}

	summary := SummariseBehaviour(models.BehaviourTally{Positive: positive, Negative: negative}, 5)

	assert.Equal(t, 45, summary.PositiveTotal)
	assert.Equal(t, 6, summary.NegativeTotal)

	require.Len(t, summary.Positive, 6)
	assert.Equal(t, "Reason 9", summary.Positive[0].Label)
	assert.Equal(t, "Reason 5", summary.Positive[4].Label)
	other := summary.Positive[5]
	assert.True(t, other.Other)
	assert.Equal(t, "Other (4 more)", other.Label)
	assert.Equal(t, 1+2+3+4, other.Points)

	require.Len(t, summary.Negative, 3)
	assert.Equal(t, "No homework", summary.Negative[0].Label)
	assert.Equal(t, "Talking", summary.Negative[2].Label)
}

func TestSummariseBehaviourRowBounds(t *testing.T) {
	for _, n := range []int{0, 1, 5, 6, 40} {
		positive := map[string]int{}
		negative := map[string]int{}
		for i := 0; i < n; i++ {
			positive[fmt.Sprintf("p%02d", i)] = i % 4
			negative[fmt.Sprintf("n%02d", i)] = i % 3
		}
		summary := SummariseBehaviour(models.BehaviourTally{Positive: positive, Negative: negative}, 0)
		assert.LessOrEqual(t, len(summary.Positive), 6, n)
		assert.Len(t, summary.Negative, n)
	}
}

func TestSummariseBehaviourTiesOrderedByLabel(t *testing.T) {
	summary := SummariseBehaviour(models.BehaviourTally{
		Positive: map[string]int{"Kindness": 2, "Effort": 2, "Teamwork": 5},
	}, 5)

	labels := []string{}
	for _, row := range summary.Positive {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"Teamwork", "Effort", "Kindness"}, labels)
	assert.Empty(t, summary.Negative)
	assert.Equal(t, 0, summary.NegativeTotal)
}
