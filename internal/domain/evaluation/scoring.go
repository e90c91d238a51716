package evaluation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type RatingBand string

type ScoreResult struct {
	OverallPercentage float64    `json:"overallPercentage"`
	Rating            RatingBand `json:"rating"`
	Details           []Detail   `json:"details"`
}

type ScoringEngine struct {
	Scale RatingScale
}

func NewScoringEngine(scale RatingScale) ScoringEngine {
	return ScoringEngine{Scale: scale}
}

// Score validates the submitted raw scores against criteria and returns the
// weighted percentage with its rating band. Nothing is returned on failure:
// a missing, non-numeric, out-of-range or unknown score rejects the whole set.
func (e ScoringEngine) Score(criteria []Criterion, submitted map[string]string) (ScoreResult, error) {
	if err := checkCriteriaSet(criteria); err != nil {
		return ScoreResult{}, err
	}

	verr := &ValidationError{}
	known := make(map[string]struct{}, len(criteria))
	details := make([]Detail, 0, len(criteria))
	for i, criterion := range criteria {
		known[criterion.ID] = struct{}{}
		field := "scores." + criterion.ID

		raw, ok := submitted[criterion.ID]
		if !ok || strings.TrimSpace(raw) == "" {
			verr.add(field, fmt.Sprintf("score for %q is required", criterion.Name))
			continue
		}
		score, err := parseRawScore(raw)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			verr.add(field, fmt.Sprintf("score for %q must be a whole number", criterion.Name))
			continue
		}
		// An overflowing digit string is a whole number, just too large.
		if err != nil || score < 0 || score > criterion.MaxScore {
			verr.add(field, fmt.Sprintf("score for %q must be between 0 and %d", criterion.Name, criterion.MaxScore))
			continue
		}
		details = append(details, Detail{
			CriterionID:   criterion.ID,
			CriterionName: criterion.Name,
			Weight:        criterion.Weight,
			MaxScore:      criterion.MaxScore,
			ScoreGiven:    score,
			Position:      i,
		})
	}

	var unknown []string
	for id := range submitted {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		verr.add("scores."+id, "unknown criterion")
	}

	if err := verr.orNil(); err != nil {
		return ScoreResult{}, err
	}

	pct := weightedPercentage(details)
	return ScoreResult{OverallPercentage: pct, Rating: e.Scale.Band(pct), Details: details}, nil
}

// Rescore recomputes the summary from stored detail rows in position order.
func (e ScoringEngine) Rescore(details []Detail) (ScoreResult, error) {
	ordered := make([]Detail, len(details))
	copy(ordered, details)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	verr := &ValidationError{}
	for _, d := range ordered {
		if d.MaxScore <= 0 || d.Weight <= 0 || d.Weight > 1 {
			return ScoreResult{}, configErrorf("criterion %s has weight %v and max score %d", d.CriterionID, d.Weight, d.MaxScore)
		}
		if d.ScoreGiven < 0 || d.ScoreGiven > d.MaxScore {
			verr.add("scores."+d.CriterionID, fmt.Sprintf("must be between 0 and %d", d.MaxScore))
		}
	}
	if err := verr.orNil(); err != nil {
		return ScoreResult{}, err
	}

	pct := weightedPercentage(ordered)
	return ScoreResult{OverallPercentage: pct, Rating: e.Scale.Band(pct), Details: ordered}, nil
}

// weightedPercentage normalizes by the weight actually present. A zero
// total weight yields 0 rather than dividing.
func weightedPercentage(details []Detail) float64 {
	var totalWeighted, totalWeight float64
	for _, d := range details {
		totalWeighted += (float64(d.ScoreGiven) / float64(d.MaxScore)) * d.Weight
		totalWeight += d.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return (totalWeighted / totalWeight) * 100
}

func checkCriteriaSet(criteria []Criterion) error {
	seen := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		if _, dup := seen[c.ID]; dup {
			return configErrorf("criterion %s appears twice in the criteria set", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.MaxScore <= 0 {
			return configErrorf("criterion %s has non-positive max score %d", c.ID, c.MaxScore)
		}
		if c.Weight <= 0 || c.Weight > 1 {
			return configErrorf("criterion %s has weight %v outside (0, 1]", c.ID, c.Weight)
		}
	}
	return nil
}

func parseRawScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(raw)
}
