package evaluation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEvaluationPDF(t *testing.T) {
	score := 65.0
	e := Evaluation{
		ID:               "ev-1",
		EmployeeID:       "emp-1",
		EvaluatorID:      "mgr-1",
		EvaluationTypeID: "type-1",
		Comments:         "Consistent delivery across the quarter.",
		OverallScore:     &score,
		OverallRating:    RatingAcceptable,
		EvaluatedAt:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Details: []Detail{
			{CriterionID: "1", CriterionName: "Quality", Weight: 0.5, MaxScore: 10, ScoreGiven: 8},
			{CriterionID: "2", Weight: 0.5, MaxScore: 20, ScoreGiven: 10},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvaluationPDF(&buf, e))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteEvaluationPDFWithoutScore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvaluationPDF(&buf, Evaluation{ID: "ev-2", OverallRating: RatingNotAvailable}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
