package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CatalogSeed is the YAML form of an initial catalog. Types reference each
// other, and cycles reference types, by Key rather than by stored id.
type CatalogSeed struct {
	Types           []SeedType           `yaml:"types"`
	Cycles          []SeedCycle          `yaml:"cycles"`
	Criteria        []SeedCriterion      `yaml:"criteria"`
	Recommendations []SeedRecommendation `yaml:"recommendations"`
	TrainingCourses []SeedTrainingCourse `yaml:"trainingCourses"`
	Employees       []SeedEmployee       `yaml:"employees"`
}

type SeedType struct {
	Key          string `yaml:"key"`
	TypeName     string `yaml:"typeName"`
	DisplayName  string `yaml:"displayName"`
	Repeatable   bool   `yaml:"repeatable"`
	Prerequisite string `yaml:"prerequisite"`
	SortOrder    *int   `yaml:"sortOrder"`
}

type SeedCycle struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	StartDate   string   `yaml:"startDate"`
	EndDate     string   `yaml:"endDate"`
	Enabled     *bool    `yaml:"enabled"`
	Departments []string `yaml:"departments"`
}

type SeedCriterion struct {
	Name          string  `yaml:"name"`
	Weight        float64 `yaml:"weight"`
	MaxScore      int     `yaml:"maxScore"`
	Department    string  `yaml:"department"`
	EmployeeClass string  `yaml:"employeeClass"`
}

type SeedRecommendation struct {
	Text       string `yaml:"text"`
	Department string `yaml:"department"`
}

type SeedTrainingCourse struct {
	Text       string `yaml:"text"`
	Department string `yaml:"department"`
	Active     *bool  `yaml:"active"`
}

type SeedEmployee struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Department    string `yaml:"department"`
	EmployeeClass string `yaml:"employeeClass"`
}

// SeedStore is the write surface a seed needs beyond the catalog service.
type SeedStore interface {
	UpsertEmployee(ctx context.Context, p EmployeeProfile) error
	CreateRecommendation(ctx context.Context, r Recommendation) (string, error)
	CreateTrainingCourse(ctx context.Context, c TrainingCourse) (string, error)
}

func LoadCatalogSeed(path string) (CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogSeed{}, fmt.Errorf("read catalog seed %s: %w", path, err)
	}
	return ParseCatalogSeed(data)
}

func ParseCatalogSeed(data []byte) (CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return CatalogSeed{}, fmt.Errorf("parse catalog seed: %w", err)
	}
	return seed, nil
}

func (t SeedType) model() EvaluationType {
	order := DefaultTypeSortOrder
	if t.SortOrder != nil {
		order = *t.SortOrder
	}
	return EvaluationType{
		ID:                 t.Key,
		TypeName:           t.TypeName,
		DisplayName:        t.DisplayName,
		IsRepeatable:       t.Repeatable,
		PrerequisiteTypeID: t.Prerequisite,
		SortOrder:          order,
	}
}

func (c SeedCycle) model() (Cycle, []FieldIssue) {
	var issues []FieldIssue
	parse := func(field, value string) time.Time {
		if value == "" {
			return time.Time{}
		}
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			issues = append(issues, FieldIssue{Field: field, Reason: "must be a YYYY-MM-DD date"})
		}
		return day
	}
	enabled := true
	if c.Enabled != nil {
		enabled = *c.Enabled
	}
	return Cycle{
		Name:             c.Name,
		EvaluationTypeID: c.Type,
		StartDate:        parse("startDate", c.StartDate),
		EndDate:          parse("endDate", c.EndDate),
		IsEnabled:        enabled,
		DepartmentIDs:    c.Departments,
	}, issues
}

func (c SeedCriterion) model() Criterion {
	return Criterion{
		Name:                  c.Name,
		Weight:                c.Weight,
		MaxScore:              c.MaxScore,
		AppliesToDepartmentID: c.Department,
		EmployeeClass:         c.EmployeeClass,
	}
}

// Check validates every record of the seed and the prerequisite graph. Field
// names are prefixed with the record's position, e.g. "criteria[2].weight".
func (seed CatalogSeed) Check(v *CatalogValidator) error {
	verr := &ValidationError{}
	prefixed := func(prefix string, err error) {
		var inner *ValidationError
		if errors.As(err, &inner) {
			for _, issue := range inner.Issues {
				verr.add(prefix+"."+issue.Field, issue.Reason)
			}
		}
	}

	keys := map[string]bool{}
	types := make([]EvaluationType, 0, len(seed.Types))
	for i, st := range seed.Types {
		prefix := fmt.Sprintf("types[%d]", i)
		if st.Key == "" {
			verr.add(prefix+".key", "is required")
		} else if keys[st.Key] {
			verr.add(prefix+".key", "duplicate key "+st.Key)
		}
		keys[st.Key] = true
		t := st.model()
		prefixed(prefix, v.Type(t))
		types = append(types, t)
	}
	for i, sc := range seed.Cycles {
		prefix := fmt.Sprintf("cycles[%d]", i)
		c, issues := sc.model()
		for _, issue := range issues {
			verr.add(prefix+"."+issue.Field, issue.Reason)
		}
		if len(issues) == 0 {
			prefixed(prefix, v.Cycle(c))
		}
		if sc.Type != "" && !keys[sc.Type] {
			verr.add(prefix+".type", "unknown evaluation type key "+sc.Type)
		}
	}
	for i, sc := range seed.Criteria {
		prefixed(fmt.Sprintf("criteria[%d]", i), v.Criterion(sc.model()))
	}
	for i, se := range seed.Employees {
		if se.ID == "" {
			verr.add(fmt.Sprintf("employees[%d].id", i), "is required")
		}
	}
	if err := verr.orNil(); err != nil {
		return err
	}
	return ValidatePrerequisites(types)
}

// ApplySeed writes the seed through the service so every record passes the
// same validation as an administrator edit. It does nothing when the
// catalog already holds evaluation types.
func ApplySeed(ctx context.Context, svc *Service, store SeedStore, actorID string, seed CatalogSeed) error {
	if err := seed.Check(svc.Validator); err != nil {
		return err
	}
	existing, err := svc.Store.ListTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("catalog seed skipped, catalog not empty", "types", len(existing))
		return nil
	}

	ids := map[string]string{}
	pending := append([]SeedType(nil), seed.Types...)
	for len(pending) > 0 {
		var next []SeedType
		for _, st := range pending {
			if st.Prerequisite != "" && ids[st.Prerequisite] == "" {
				next = append(next, st)
				continue
			}
			t := st.model()
			t.PrerequisiteTypeID = ids[st.Prerequisite]
			id, err := svc.CreateType(ctx, actorID, t)
			if err != nil {
				return fmt.Errorf("seed type %s: %w", st.Key, err)
			}
			ids[st.Key] = id
		}
		if len(next) == len(pending) {
			return configErrorf("seed types have unresolvable prerequisites")
		}
		pending = next
	}

	for _, sc := range seed.Cycles {
		c, _ := sc.model()
		c.EvaluationTypeID = ids[sc.Type]
		if _, err := svc.CreateCycle(ctx, actorID, c); err != nil {
			return fmt.Errorf("seed cycle %s: %w", sc.Name, err)
		}
	}
	for _, sc := range seed.Criteria {
		if _, err := svc.CreateCriterion(ctx, actorID, sc.model()); err != nil {
			return fmt.Errorf("seed criterion %s: %w", sc.Name, err)
		}
	}
	for _, sr := range seed.Recommendations {
		if _, err := store.CreateRecommendation(ctx, Recommendation{Text: sr.Text, AppliesToDepartmentID: sr.Department}); err != nil {
			return fmt.Errorf("seed recommendation: %w", err)
		}
	}
	for _, st := range seed.TrainingCourses {
		active := true
		if st.Active != nil {
			active = *st.Active
		}
		if _, err := store.CreateTrainingCourse(ctx, TrainingCourse{Text: st.Text, AppliesToDepartmentID: st.Department, IsActive: active}); err != nil {
			return fmt.Errorf("seed training course: %w", err)
		}
	}
	for _, se := range seed.Employees {
		p := EmployeeProfile{EmployeeID: se.ID, Name: se.Name, DepartmentID: se.Department, ClassTags: se.EmployeeClass}
		if err := store.UpsertEmployee(ctx, p); err != nil {
			return fmt.Errorf("seed employee %s: %w", se.ID, err)
		}
	}
	slog.Info("catalog seed applied", "types", len(seed.Types), "cycles", len(seed.Cycles), "criteria", len(seed.Criteria))
	return nil
}
