package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBands(t *testing.T) {
	scale := DefaultRatingScale()
	cases := []struct {
		pct  float64
		want RatingBand
	}{
		{100, RatingExcellent},
		{90, RatingExcellent},
		{89.999, RatingVeryGood},
		{80, RatingVeryGood},
		{79.99, RatingGood},
		{70, RatingGood},
		{60, RatingAcceptable},
		{59.9, RatingWeak},
		{0, RatingWeak},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scale.Band(tc.pct), "pct %v", tc.pct)
	}
	assert.Equal(t, RatingNotAvailable, scale.BandFor(nil))
}

func TestParseRatingScaleFillsDefaults(t *testing.T) {
	scale, err := ParseRatingScale([]byte(`
thresholds:
  - {min: 75, label: Strong}
  - {min: 50, label: Fair}
floor: Poor
`))
	require.NoError(t, err)
	assert.Equal(t, RatingBand("Strong"), scale.Band(75))
	assert.Equal(t, RatingBand("Fair"), scale.Band(74.9))
	assert.Equal(t, RatingBand("Poor"), scale.Band(10))
	assert.Equal(t, RatingNotAvailable, scale.Unavailable)
}

func TestParseRatingScaleRejectsDisorder(t *testing.T) {
	_, err := ParseRatingScale([]byte(`
thresholds:
  - {min: 50, label: Fair}
  - {min: 75, label: Strong}
`))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ParseRatingScale([]byte("thresholds:\n  - {min: 120, label: Odd}\n"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadRatingScaleEmptyPath(t *testing.T) {
	scale, err := LoadRatingScale("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRatingScale(), scale)
}
