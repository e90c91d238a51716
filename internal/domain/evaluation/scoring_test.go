package evaluation

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCriteria() []Criterion {
	return []Criterion{
		{ID: "1", Name: "Quality", Weight: 0.5, MaxScore: 10, EmployeeClass: "A"},
		{ID: "2", Name: "Delivery", Weight: 0.5, MaxScore: 20, EmployeeClass: "A"},
	}
}

func TestScoreWeightedPercentage(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())

	result, err := engine.Score(twoCriteria(), map[string]string{"1": "8", "2": " 10 "})
	require.NoError(t, err)
	assert.InDelta(t, 65.0, result.OverallPercentage, 1e-9)
	assert.Equal(t, RatingAcceptable, result.Rating)
	require.Len(t, result.Details, 2)
	assert.Equal(t, 0, result.Details[0].Position)
	assert.Equal(t, 10, result.Details[1].ScoreGiven)
	assert.Equal(t, 20, result.Details[1].MaxScore)
}

func TestScoreAllZeroIsZero(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())

	result, err := engine.Score(twoCriteria(), map[string]string{"1": "0", "2": "0"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.OverallPercentage)
	assert.Equal(t, RatingWeak, result.Rating)
}

func TestScorePercentageStaysInRange(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	weights := []float64{0.1, 0.5, 1}
	maxScores := []int{1, 3, 10}

	for _, wa := range weights {
		for _, wb := range weights {
			for _, ma := range maxScores {
				for _, mb := range maxScores {
					criteria := []Criterion{
						{ID: "a", Name: "A", Weight: wa, MaxScore: ma},
						{ID: "b", Name: "B", Weight: wb, MaxScore: mb},
					}
					for _, sa := range []int{0, ma / 2, ma} {
						for _, sb := range []int{0, mb / 2, mb} {
							scores := map[string]string{"a": strconv.Itoa(sa), "b": strconv.Itoa(sb)}
							result, err := engine.Score(criteria, scores)
							require.NoError(t, err)
							assert.GreaterOrEqual(t, result.OverallPercentage, 0.0, "scores %v on %v", scores, criteria)
							assert.LessOrEqual(t, result.OverallPercentage, 100.0+1e-9, "scores %v on %v", scores, criteria)
						}
					}
				}
			}
		}
	}
}

func TestScoreOverflowIsOutOfRange(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	_, err := engine.Score(twoCriteria(), map[string]string{"1": "99999999999999999999", "2": "10"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "scores.1", verr.Issues[0].Field)
	assert.Contains(t, verr.Issues[0].Reason, "between 0 and 10")
}

func TestScoreNormalizesByPresentWeight(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	criteria := []Criterion{
		{ID: "a", Name: "Only", Weight: 0.25, MaxScore: 4, EmployeeClass: "A"},
	}
	result, err := engine.Score(criteria, map[string]string{"a": "4"})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, result.OverallPercentage, 1e-9)
	assert.Equal(t, RatingExcellent, result.Rating)
}

func TestScoreRejectsWholeSet(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	cases := map[string]map[string]string{
		"missing":      {"1": "8"},
		"blank":        {"1": "8", "2": "  "},
		"non numeric":  {"1": "eight", "2": "10"},
		"fraction":     {"1": "7.5", "2": "10"},
		"negative":     {"1": "-1", "2": "10"},
		"above max":    {"1": "11", "2": "10"},
		"unknown id":   {"1": "8", "2": "10", "3": "1"},
		"signed score": {"1": "+8", "2": "10"},
	}
	for name, scores := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := engine.Score(twoCriteria(), scores)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Empty(t, result.Details)
		})
	}
}

func TestScoreReportsEveryIssue(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	_, err := engine.Score(twoCriteria(), map[string]string{"1": "x", "9": "1"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{"scores.1", "scores.2", "scores.9"}, fields)
}

func TestScoreRejectsBadConfiguration(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	cases := map[string][]Criterion{
		"zero max":     {{ID: "1", Weight: 0.5, MaxScore: 0}},
		"zero weight":  {{ID: "1", Weight: 0, MaxScore: 5}},
		"weight above": {{ID: "1", Weight: 1.5, MaxScore: 5}},
		"duplicate id": {{ID: "1", Weight: 0.5, MaxScore: 5}, {ID: "1", Weight: 0.5, MaxScore: 5}},
	}
	for name, criteria := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.Score(criteria, map[string]string{"1": "1"})
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestRescoreReproducesStoredSummary(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	scored, err := engine.Score(twoCriteria(), map[string]string{"1": "7", "2": "13"})
	require.NoError(t, err)

	shuffled := []Detail{scored.Details[1], scored.Details[0]}
	again, err := engine.Rescore(shuffled)
	require.NoError(t, err)
	assert.Equal(t, scored.OverallPercentage, again.OverallPercentage)
	assert.Equal(t, scored.Rating, again.Rating)
	assert.Equal(t, "1", again.Details[0].CriterionID)
}

func TestRescoreEmptyDetailsIsZero(t *testing.T) {
	engine := NewScoringEngine(DefaultRatingScale())
	result, err := engine.Rescore(nil)
	require.NoError(t, err)
	assert.Zero(t, result.OverallPercentage)
	assert.Equal(t, RatingWeak, result.Rating)
}
