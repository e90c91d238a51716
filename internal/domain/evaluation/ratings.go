package evaluation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Threshold struct {
	Min   float64    `yaml:"min" json:"min"`
	Label RatingBand `yaml:"label" json:"label"`
}

// RatingScale maps percentages to bands. Thresholds are evaluated highest
// first with inclusive lower bounds; anything below the last uses Floor.
type RatingScale struct {
	Thresholds  []Threshold `yaml:"thresholds" json:"thresholds"`
	Floor       RatingBand  `yaml:"floor" json:"floor"`
	Unavailable RatingBand  `yaml:"unavailable" json:"unavailable"`
}

func DefaultRatingScale() RatingScale {
	return RatingScale{
		Thresholds: []Threshold{
			{Min: 90, Label: RatingExcellent},
			{Min: 80, Label: RatingVeryGood},
			{Min: 70, Label: RatingGood},
			{Min: 60, Label: RatingAcceptable},
		},
		Floor:       RatingWeak,
		Unavailable: RatingNotAvailable,
	}
}

func (s RatingScale) Band(pct float64) RatingBand {
	for _, t := range s.Thresholds {
		if pct >= t.Min {
			return t.Label
		}
	}
	return s.Floor
}

// BandFor maps an optional score, returning Unavailable for nil.
func (s RatingScale) BandFor(score *float64) RatingBand {
	if score == nil {
		return s.Unavailable
	}
	return s.Band(*score)
}

func (s RatingScale) Validate() error {
	if strings.TrimSpace(string(s.Floor)) == "" {
		return configErrorf("rating scale floor label is required")
	}
	if strings.TrimSpace(string(s.Unavailable)) == "" {
		return configErrorf("rating scale unavailable label is required")
	}
	for i, t := range s.Thresholds {
		if strings.TrimSpace(string(t.Label)) == "" {
			return configErrorf("rating threshold %d has no label", i)
		}
		if t.Min < 0 || t.Min > 100 {
			return configErrorf("rating threshold %q min %v outside [0, 100]", t.Label, t.Min)
		}
		if i > 0 && t.Min >= s.Thresholds[i-1].Min {
			return configErrorf("rating thresholds must be strictly descending at %q", t.Label)
		}
	}
	return nil
}

// LoadRatingScale reads a YAML rating scale. An empty path returns the
// default scale; omitted labels fall back to the defaults.
func LoadRatingScale(path string) (RatingScale, error) {
	if path == "" {
		return DefaultRatingScale(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RatingScale{}, fmt.Errorf("read rating scale %s: %w", path, err)
	}
	return ParseRatingScale(data)
}

func ParseRatingScale(data []byte) (RatingScale, error) {
	var scale RatingScale
	if err := yaml.Unmarshal(data, &scale); err != nil {
		return RatingScale{}, fmt.Errorf("parse rating scale: %w", err)
	}
	defaults := DefaultRatingScale()
	if len(scale.Thresholds) == 0 {
		scale.Thresholds = defaults.Thresholds
	}
	if scale.Floor == "" {
		scale.Floor = defaults.Floor
	}
	if scale.Unavailable == "" {
		scale.Unavailable = defaults.Unavailable
	}
	if err := scale.Validate(); err != nil {
		return RatingScale{}, err
	}
	return scale, nil
}
