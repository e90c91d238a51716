package evaluation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation             = errors.New("evaluation validation failed")
	ErrConfiguration          = errors.New("evaluation configuration invalid")
	ErrNotFound               = errors.New("evaluation record not found")
	ErrNoCriteria             = errors.New("no evaluation criteria configured for employee")
	ErrTypeUnavailable        = errors.New("evaluation type not available")
	ErrAlreadyCompleted       = errors.New("non-repeatable evaluation already recorded")
	ErrInUse                  = errors.New("record is referenced and cannot be deleted")
	ErrEligibilityUnavailable = errors.New("evaluation eligibility could not be determined")
	ErrForbidden              = errors.New("evaluator may not evaluate this employee")
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every rejected input of one request.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, reason string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// UnavailableError carries the reason a submitted type was not usable.
type UnavailableError struct {
	TypeID     string
	ReasonCode string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrTypeUnavailable, e.TypeID, e.ReasonCode)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrTypeUnavailable
}
