package shared

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"appraisal/internal/domain/evaluation"
	"appraisal/internal/transport/http/api"
)

// Validator collects query and payload problems for one request. Issues keep
// the order in which they were found.
type Validator struct {
	verr evaluation.ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.verr.Issues = append(v.verr.Issues, evaluation.FieldIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return
	}
	v.Add(startField, "must be on or before "+endField)
	v.Add(endField, "must be on or after "+startField)
}

// Err returns the collected issues as a domain validation error, or nil.
func (v *Validator) Err() error {
	if v == nil || len(v.verr.Issues) == 0 {
		return nil
	}
	return &evaluation.ValidationError{Issues: append([]evaluation.FieldIssue(nil), v.verr.Issues...)}
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	err := v.Err()
	if err == nil {
		return false
	}
	WriteValidation(w, requestID, err)
	return true
}

// WriteValidation answers 400 when err carries field issues and reports
// whether it did.
func WriteValidation(w http.ResponseWriter, requestID string, err error) bool {
	var verr *evaluation.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	issues := verr.Issues
	if issues == nil {
		issues = []evaluation.FieldIssue{}
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
	return true
}
