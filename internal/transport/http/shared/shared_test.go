package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal/internal/domain/evaluation"
)

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), day)

	day, err = ParseDate("2024-03-01T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)

	day, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, day.IsZero())
}

func TestPage(t *testing.T) {
	v := NewValidator()
	page := v.Page(url.Values{"limit": {"500"}, "offset": {"20"}}, 50, 200)
	assert.Equal(t, Pagination{Limit: 200, Offset: 20}, page)
	assert.NoError(t, v.Err())

	v = NewValidator()
	page = v.Page(url.Values{}, 50, 200)
	assert.Equal(t, Pagination{Limit: 50}, page)

	v = NewValidator()
	v.Page(url.Values{"limit": {"0"}, "offset": {"x"}}, 50, 200)
	var verr *evaluation.ValidationError
	require.True(t, errors.As(v.Err(), &verr))
	assert.Equal(t, []evaluation.FieldIssue{
		{Field: "limit", Reason: "must be a positive integer"},
		{Field: "offset", Reason: "must be a non-negative integer"},
	}, verr.Issues)
}

func TestValidatorKeepsDiscoveryOrder(t *testing.T) {
	v := NewValidator()
	start, ok := v.Date("startDate", "2024-03-31")
	require.True(t, ok)
	end, ok := v.Date("endDate", "2024-01-01")
	require.True(t, ok)
	v.DateOrder("startDate", start, "endDate", end)
	v.Add("name", "  ")

	var verr *evaluation.ValidationError
	require.True(t, errors.As(v.Err(), &verr))
	require.Len(t, verr.Issues, 2)
	assert.Equal(t, "startDate", verr.Issues[0].Field)
	assert.Equal(t, "endDate", verr.Issues[1].Field)
}

func TestRejectWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, NewValidator().Reject(rec, "req-1"))

	v := NewValidator()
	v.Add("asOf", "must be a valid date in YYYY-MM-DD format")
	assert.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"asOf"`)

	assert.False(t, WriteValidation(httptest.NewRecorder(), "req-1", errors.New("other")))
}
