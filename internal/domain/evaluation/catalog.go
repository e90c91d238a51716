package evaluation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CatalogValidator checks administrator-edited configuration records.
type CatalogValidator struct {
	validate *validator.Validate
	classes  map[string]struct{}
}

func NewCatalogValidator(classes []string) *CatalogValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	allowed := make(map[string]struct{}, len(classes))
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class != "" {
			allowed[class] = struct{}{}
		}
	}
	return &CatalogValidator{validate: v, classes: allowed}
}

func (v *CatalogValidator) Type(t EvaluationType) error {
	verr := &ValidationError{}
	v.structIssues(verr, t)
	if t.ID != "" && t.PrerequisiteTypeID == t.ID {
		verr.add("prerequisiteTypeId", "cannot reference itself")
	}
	return verr.orNil()
}

func (v *CatalogValidator) Cycle(c Cycle) error {
	verr := &ValidationError{}
	v.structIssues(verr, c)
	if c.StartDate.IsZero() {
		verr.add("startDate", "is required")
	}
	if c.EndDate.IsZero() {
		verr.add("endDate", "is required")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && DateOnly(c.EndDate).Before(DateOnly(c.StartDate)) {
		verr.add("startDate", "must be on or before endDate")
		verr.add("endDate", "must be on or after startDate")
	}
	seen := map[string]struct{}{}
	for _, dept := range c.DepartmentIDs {
		if strings.TrimSpace(dept) == "" {
			verr.add("departmentIds", "must not contain blank ids")
			break
		}
		if _, dup := seen[dept]; dup {
			verr.add("departmentIds", "must not contain duplicates")
			break
		}
		seen[dept] = struct{}{}
	}
	return verr.orNil()
}

func (v *CatalogValidator) Criterion(c Criterion) error {
	verr := &ValidationError{}
	v.structIssues(verr, c)
	if strings.TrimSpace(c.EmployeeClass) != "" {
		if reason := v.classIssue(c.EmployeeClass); reason != "" {
			verr.add("employeeClass", reason)
		}
	}
	return verr.orNil()
}

// CanonicalClass normalizes a class field to its storage form.
func CanonicalClass(raw string) string {
	return ParseClassTags(raw).String()
}

func (v *CatalogValidator) classIssue(raw string) string {
	parts := strings.Split(raw, ClassSeparator)
	sentinel := false
	tags := 0
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		switch {
		case tag == "":
			continue
		case strings.EqualFold(tag, UnassignedClass):
			sentinel = true
		default:
			if _, ok := v.classes[tag]; !ok {
				return fmt.Sprintf("unknown employee class %q", tag)
			}
			tags++
		}
	}
	if sentinel && tags > 0 {
		return UnassignedClass + " cannot be combined with class tags"
	}
	if !sentinel && tags == 0 {
		return "at least one employee class is required"
	}
	return ""
}

func (v *CatalogValidator) structIssues(verr *ValidationError, s any) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), describeTag(fe))
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// ValidatePrerequisites rejects prerequisite references to unknown types,
// self references and chains that loop back on themselves.
func ValidatePrerequisites(types []EvaluationType) error {
	next := make(map[string]string, len(types))
	for _, t := range types {
		next[t.ID] = t.PrerequisiteTypeID
	}
	for _, t := range types {
		if t.PrerequisiteTypeID == "" {
			continue
		}
		if t.PrerequisiteTypeID == t.ID {
			return configErrorf("evaluation type %s lists itself as prerequisite", t.ID)
		}
		if _, ok := next[t.PrerequisiteTypeID]; !ok {
			return configErrorf("evaluation type %s references unknown prerequisite %s", t.ID, t.PrerequisiteTypeID)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(types))
	for _, t := range SortCatalog(types) {
		if state[t.ID] != unvisited {
			continue
		}
		var path []string
		id := t.ID
		for id != "" && state[id] == unvisited {
			state[id] = visiting
			path = append(path, id)
			id = next[id]
		}
		if id != "" && state[id] == visiting {
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			loop := append(append([]string{}, path[start:]...), id)
			return configErrorf("prerequisite cycle: %s", strings.Join(loop, " -> "))
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

// CheckTypeWrite validates catalog as it would look after writing t. Stores
// call it inside the transaction that performs the write.
func CheckTypeWrite(catalog []EvaluationType, t EvaluationType) error {
	if t.PrerequisiteTypeID == "" {
		return nil
	}
	known := false
	for _, existing := range catalog {
		if existing.ID == t.PrerequisiteTypeID {
			known = true
			break
		}
	}
	if !known {
		return &ValidationError{Issues: []FieldIssue{{Field: "prerequisiteTypeId", Reason: "unknown evaluation type"}}}
	}
	if t.ID == "" {
		return nil
	}
	return ValidatePrerequisites(ReplaceType(catalog, t))
}

// ReplaceType returns catalog with t inserted or replacing the entry with the same id.
func ReplaceType(catalog []EvaluationType, t EvaluationType) []EvaluationType {
	out := make([]EvaluationType, 0, len(catalog)+1)
	replaced := false
	for _, existing := range catalog {
		if existing.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}
