package evaluation

import (
	"sort"
	"time"
)

// CycleGatePolicy decides the cycle gate for types that have no active cycle.
type CycleGatePolicy int

const (
	// OpenIfNoCycleDefined treats untimed types as always open.
	OpenIfNoCycleDefined CycleGatePolicy = iota
	// ClosedIfNoCycleDefined requires an active cycle for every type.
	ClosedIfNoCycleDefined
)

// EligibilityInput is the materialized data one resolution runs over.
type EligibilityInput struct {
	Catalog            []EvaluationType
	CompletedTypeIDs   []string
	Cycles             []Cycle
	ActingDepartmentID string
	AsOf               time.Time
}

type Resolver struct {
	Policy CycleGatePolicy
}

func NewResolver() Resolver {
	return Resolver{Policy: OpenIfNoCycleDefined}
}

// cycleScope is the merged department scope of every active cycle of one type.
type cycleScope struct {
	allDepartments bool
	departments    map[string]struct{}
}

func (s cycleScope) admits(departmentID string) bool {
	if s.allDepartments {
		return true
	}
	_, ok := s.departments[departmentID]
	return ok
}

// Resolve returns every catalog type in sort order with its usable flag and
// the first failing gate as reason: prerequisite, then repeat, then cycle.
func (r Resolver) Resolve(in EligibilityInput) []Availability {
	completed := make(map[string]struct{}, len(in.CompletedTypeIDs))
	for _, id := range in.CompletedTypeIDs {
		completed[id] = struct{}{}
	}

	catalog := SortCatalog(in.Catalog)
	names := make(map[string]string, len(catalog))
	for _, t := range catalog {
		names[t.ID] = t.DisplayName
	}

	scopes := activeCycleScopes(in.Cycles, in.AsOf)

	out := make([]Availability, 0, len(catalog))
	for _, t := range catalog {
		entry := Availability{TypeID: t.ID, DisplayName: t.DisplayName}

		_, done := completed[t.ID]
		prereqMet := t.PrerequisiteTypeID == ""
		if !prereqMet {
			_, prereqMet = completed[t.PrerequisiteTypeID]
		}
		repeatMet := t.IsRepeatable || !done
		cycleMet := r.cycleGate(scopes, t.ID, in.ActingDepartmentID)

		switch {
		case !prereqMet:
			entry.ReasonCode = ReasonPrerequisiteMissing
			entry.PrerequisiteID = t.PrerequisiteTypeID
			entry.PrerequisiteName = names[t.PrerequisiteTypeID]
		case !repeatMet:
			entry.ReasonCode = ReasonAlreadyCompleted
		case !cycleMet:
			entry.ReasonCode = ReasonOutsideCycle
		default:
			entry.Usable = true
			entry.ReasonCode = ReasonAvailable
		}
		entry.Note = reasonNote(entry)
		out = append(out, entry)
	}
	return out
}

func reasonNote(entry Availability) string {
	switch entry.ReasonCode {
	case ReasonPrerequisiteMissing:
		if entry.PrerequisiteName == "" {
			return "requires a prerequisite evaluation"
		}
		return "requires: " + entry.PrerequisiteName
	case ReasonAlreadyCompleted:
		return "already completed"
	case ReasonOutsideCycle:
		return "outside evaluation cycle"
	default:
		return "available"
	}
}

func (r Resolver) cycleGate(scopes map[string]cycleScope, typeID, departmentID string) bool {
	scope, ok := scopes[typeID]
	if !ok {
		return r.Policy == OpenIfNoCycleDefined
	}
	return scope.admits(departmentID)
}

// activeCycleScopes merges enabled cycles covering asOf per type. A cycle
// with no departments opens its type to every department.
func activeCycleScopes(cycles []Cycle, asOf time.Time) map[string]cycleScope {
	day := DateOnly(asOf)
	scopes := map[string]cycleScope{}
	for _, c := range cycles {
		if !c.IsEnabled || !CoversDay(c, day) {
			continue
		}
		scope, ok := scopes[c.EvaluationTypeID]
		if !ok {
			scope = cycleScope{departments: map[string]struct{}{}}
		}
		if len(c.DepartmentIDs) == 0 {
			scope.allDepartments = true
		}
		for _, dept := range c.DepartmentIDs {
			scope.departments[dept] = struct{}{}
		}
		scopes[c.EvaluationTypeID] = scope
	}
	return scopes
}

// CoversDay reports whether day falls in the cycle's inclusive date range.
func CoversDay(c Cycle, day time.Time) bool {
	day = DateOnly(day)
	return !day.Before(DateOnly(c.StartDate)) && !day.After(DateOnly(c.EndDate))
}

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortCatalog orders types by sort order, then display name, then id.
func SortCatalog(types []EvaluationType) []EvaluationType {
	out := make([]EvaluationType, len(types))
	copy(out, types)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Find returns the availability entry for typeID.
func Find(list []Availability, typeID string) (Availability, bool) {
	for _, entry := range list {
		if entry.TypeID == typeID {
			return entry, true
		}
	}
	return Availability{}, false
}
