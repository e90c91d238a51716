package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Metrics receives domain counters. A nil Metrics is ignored.
type Metrics interface {
	EligibilityFallback()
	SubmissionAccepted()
	SubmissionRejected(reason string)
}

type ViewScope int

const (
	ViewNone ViewScope = iota
	ViewOwn
	ViewEvaluated
	ViewAll
)

// Viewer is the caller of a read or delete, with the evaluations it may see.
type Viewer struct {
	UserID string
	Scope  ViewScope
}

type Service struct {
	Store     StoreAPI
	Resolver  Resolver
	Scoring   ScoringEngine
	Validator *CatalogValidator
	Audit     Auditor
	Metrics   Metrics
	Now       func() time.Time
}

func NewService(store StoreAPI, scale RatingScale, classes []string) *Service {
	return &Service{
		Store:     store,
		Resolver:  NewResolver(),
		Scoring:   NewScoringEngine(scale),
		Validator: NewCatalogValidator(classes),
		Now:       time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// AvailableTypes resolves the catalog for one employee. A failed lookup is
// not fatal: the result is an empty list together with an error wrapping
// ErrEligibilityUnavailable, so callers can show "no types available".
func (s *Service) AvailableTypes(ctx context.Context, employeeID, actingDepartmentID string, asOf time.Time) ([]Availability, error) {
	in, err := s.loadEligibility(ctx, employeeID, actingDepartmentID, asOf)
	if err != nil {
		return s.degraded(employeeID, err)
	}
	return s.Resolver.Resolve(in), nil
}

// AvailableTypesFor is AvailableTypes as seen by evaluatorID. The acting
// department is the evaluator's stored department, the same one
// PrepareEvaluation and SubmitEvaluation resolve, so a type shown as usable
// here is accepted on submit. An unknown participant or a department
// mismatch under sameDepartmentOnly is returned as is; any other lookup
// failure degrades like AvailableTypes.
func (s *Service) AvailableTypesFor(ctx context.Context, evaluatorID, employeeID string, sameDepartmentOnly bool, asOf time.Time) ([]Availability, error) {
	_, evaluatorDept, err := s.participants(ctx, evaluatorID, employeeID, sameDepartmentOnly)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return nil, err
	case err != nil:
		return s.degraded(employeeID, err)
	}
	return s.AvailableTypes(ctx, employeeID, evaluatorDept, asOf)
}

func (s *Service) degraded(employeeID string, cause error) ([]Availability, error) {
	slog.Warn("evaluation eligibility degraded", "employeeId", employeeID, "err", cause)
	if s.Metrics != nil {
		s.Metrics.EligibilityFallback()
	}
	return []Availability{}, fmt.Errorf("%w: %w", ErrEligibilityUnavailable, cause)
}

func (s *Service) loadEligibility(ctx context.Context, employeeID, actingDepartmentID string, asOf time.Time) (EligibilityInput, error) {
	in := EligibilityInput{ActingDepartmentID: actingDepartmentID, AsOf: asOf}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.Store.CompletedTypeIDs(gctx, employeeID)
		if err != nil {
			return fmt.Errorf("load evaluation history: %w", err)
		}
		in.CompletedTypeIDs = ids
		return nil
	})
	g.Go(func() error {
		types, err := s.Store.ListTypes(gctx)
		if err != nil {
			return fmt.Errorf("load evaluation types: %w", err)
		}
		in.Catalog = types
		return nil
	})
	g.Go(func() error {
		cycles, err := s.Store.ListCycles(gctx)
		if err != nil {
			return fmt.Errorf("load evaluation cycles: %w", err)
		}
		in.Cycles = cycles
		return nil
	})
	if err := g.Wait(); err != nil {
		return EligibilityInput{}, err
	}
	return in, nil
}

// PrepareEvaluation gathers what an evaluator needs to fill in a new
// evaluation. It fails with ErrNoCriteria when nothing applies to the employee.
func (s *Service) PrepareEvaluation(ctx context.Context, evaluatorID, employeeID string, sameDepartmentOnly bool, asOf time.Time) (EvaluationForm, error) {
	profile, evaluatorDept, err := s.participants(ctx, evaluatorID, employeeID, sameDepartmentOnly)
	if err != nil {
		return EvaluationForm{}, err
	}

	criteria, err := s.criteriaFor(ctx, profile)
	if err != nil {
		return EvaluationForm{}, err
	}

	recs, courses, err := s.followUps(ctx, profile.DepartmentID)
	if err != nil {
		return EvaluationForm{}, err
	}

	form := EvaluationForm{
		Employee:        profile,
		Criteria:        criteria,
		Recommendations: recs,
		TrainingCourses: courses,
		EvaluatorDeptID: evaluatorDept,
	}
	form.Availability, err = s.AvailableTypes(ctx, employeeID, evaluatorDept, asOf)
	if err != nil {
		form.EligibilityError = true
	}
	return form, nil
}

// SubmitEvaluation checks eligibility strictly, scores the submission and
// writes the evaluation with its details atomically.
func (s *Service) SubmitEvaluation(ctx context.Context, sub Submission, sameDepartmentOnly bool, asOf time.Time) (Evaluation, error) {
	saved, err := s.submit(ctx, sub, sameDepartmentOnly, asOf)
	if s.Metrics != nil {
		if err != nil {
			s.Metrics.SubmissionRejected(rejectionReason(err))
		} else {
			s.Metrics.SubmissionAccepted()
		}
	}
	return saved, err
}

func (s *Service) submit(ctx context.Context, sub Submission, sameDepartmentOnly bool, asOf time.Time) (Evaluation, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(sub.EmployeeID) == "" {
		verr.add("employeeId", "is required")
	}
	if strings.TrimSpace(sub.EvaluatorID) == "" {
		verr.add("evaluatorId", "is required")
	}
	if strings.TrimSpace(sub.EvaluationTypeID) == "" {
		verr.add("evaluationTypeId", "is required")
	}
	if err := verr.orNil(); err != nil {
		return Evaluation{}, err
	}

	profile, evaluatorDept, err := s.participants(ctx, sub.EvaluatorID, sub.EmployeeID, sameDepartmentOnly)
	if err != nil {
		return Evaluation{}, err
	}
	criteria, err := s.criteriaFor(ctx, profile)
	if err != nil {
		return Evaluation{}, err
	}

	in, err := s.loadEligibility(ctx, sub.EmployeeID, evaluatorDept, asOf)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: %w", ErrEligibilityUnavailable, err)
	}
	entry, ok := Find(s.Resolver.Resolve(in), sub.EvaluationTypeID)
	if !ok {
		return Evaluation{}, &ValidationError{Issues: []FieldIssue{{Field: "evaluationTypeId", Reason: "unknown evaluation type"}}}
	}
	if !entry.Usable {
		return Evaluation{}, &UnavailableError{TypeID: entry.TypeID, ReasonCode: entry.ReasonCode}
	}

	if err := s.checkFollowUps(ctx, profile.DepartmentID, sub); err != nil {
		return Evaluation{}, err
	}

	result, err := s.Scoring.Score(criteria, sub.Scores)
	if err != nil {
		return Evaluation{}, err
	}

	pct := result.OverallPercentage
	e := Evaluation{
		EmployeeID:       sub.EmployeeID,
		EvaluatorID:      sub.EvaluatorID,
		EvaluationTypeID: sub.EvaluationTypeID,
		TypeDisplayName:  entry.DisplayName,
		Comments:         strings.TrimSpace(sub.Comments),
		RecommendationID: sub.RecommendationID,
		TrainingCourseID: sub.TrainingCourseID,
		OverallScore:     &pct,
		OverallRating:    result.Rating,
		EvaluatedAt:      s.now().UTC(),
	}
	id, err := s.Store.CreateEvaluation(ctx, e, result.Details)
	if err != nil {
		return Evaluation{}, err
	}
	e.ID = id
	e.Details = make([]Detail, len(result.Details))
	for i, d := range result.Details {
		d.EvaluationID = id
		e.Details[i] = d
	}
	s.record(ctx, sub.EvaluatorID, "evaluation.create", "evaluation", id, e)
	return e, nil
}

func (s *Service) participants(ctx context.Context, evaluatorID, employeeID string, sameDepartmentOnly bool) (EmployeeProfile, string, error) {
	profile, err := s.Store.EmployeeProfile(ctx, employeeID)
	if err != nil {
		return EmployeeProfile{}, "", err
	}
	evaluatorDept, err := s.Store.EvaluatorDepartment(ctx, evaluatorID)
	if err != nil {
		return EmployeeProfile{}, "", err
	}
	if sameDepartmentOnly && evaluatorDept != profile.DepartmentID {
		return EmployeeProfile{}, "", ErrForbidden
	}
	return profile, evaluatorDept, nil
}

func (s *Service) criteriaFor(ctx context.Context, profile EmployeeProfile) ([]Criterion, error) {
	all, err := s.Store.ListCriteria(ctx)
	if err != nil {
		return nil, err
	}
	criteria := SelectCriteria(all, ParseClassTags(profile.ClassTags), profile.DepartmentID)
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: class %q in department %s", ErrNoCriteria, CanonicalClass(profile.ClassTags), profile.DepartmentID)
	}
	return criteria, nil
}

func (s *Service) followUps(ctx context.Context, departmentID string) ([]Recommendation, []TrainingCourse, error) {
	recs, err := s.Store.ListRecommendations(ctx)
	if err != nil {
		return nil, nil, err
	}
	courses, err := s.Store.ListTrainingCourses(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ApplicableRecommendations(recs, departmentID), ApplicableTrainingCourses(courses, departmentID), nil
}

func (s *Service) checkFollowUps(ctx context.Context, departmentID string, sub Submission) error {
	if sub.RecommendationID == "" && sub.TrainingCourseID == "" {
		return nil
	}
	recs, courses, err := s.followUps(ctx, departmentID)
	if err != nil {
		return err
	}
	verr := &ValidationError{}
	if sub.RecommendationID != "" {
		found := false
		for _, rec := range recs {
			if rec.ID == sub.RecommendationID {
				found = true
				break
			}
		}
		if !found {
			verr.add("recommendationId", "not applicable to the employee's department")
		}
	}
	if sub.TrainingCourseID != "" {
		found := false
		for _, course := range courses {
			if course.ID == sub.TrainingCourseID {
				found = true
				break
			}
		}
		if !found {
			verr.add("trainingCourseId", "not an active course for the employee's department")
		}
	}
	return verr.orNil()
}

// Recompute re-reads an evaluation's details and scores them again. The
// returned flag reports whether the stored summary is reproduced exactly.
func (s *Service) Recompute(ctx context.Context, evaluationID string) (ScoreResult, bool, error) {
	e, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return ScoreResult{}, false, err
	}
	result, err := s.Scoring.Rescore(e.Details)
	if err != nil {
		return ScoreResult{}, false, err
	}
	consistent := e.OverallScore != nil && *e.OverallScore == result.OverallPercentage && e.OverallRating == result.Rating
	return result, consistent, nil
}

func (v Viewer) canSee(e Evaluation) bool {
	switch v.Scope {
	case ViewAll:
		return true
	case ViewEvaluated:
		return e.EvaluatorID == v.UserID
	case ViewOwn:
		return e.EmployeeID == v.UserID
	default:
		return false
	}
}

func (s *Service) GetEvaluation(ctx context.Context, viewer Viewer, evaluationID string) (Evaluation, error) {
	e, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !viewer.canSee(e) {
		return Evaluation{}, ErrNotFound
	}
	if e.OverallRating == "" {
		e.OverallRating = s.Scoring.Scale.BandFor(e.OverallScore)
	}
	return e, nil
}

// ListEvaluations narrows filter to what viewer may see.
func (s *Service) ListEvaluations(ctx context.Context, viewer Viewer, filter ListFilter) ([]Evaluation, error) {
	switch viewer.Scope {
	case ViewAll:
	case ViewEvaluated:
		filter.EvaluatorID = viewer.UserID
	case ViewOwn:
		filter.EmployeeID = viewer.UserID
	default:
		return []Evaluation{}, nil
	}
	return s.Store.ListEvaluations(ctx, filter)
}

func (s *Service) DeleteEvaluation(ctx context.Context, actorID, evaluationID string) error {
	if err := s.Store.DeleteEvaluation(ctx, evaluationID); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation.delete", "evaluation", evaluationID, nil)
	return nil
}

func (s *Service) ListTypes(ctx context.Context) ([]EvaluationType, error) {
	types, err := s.Store.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	return SortCatalog(types), nil
}

func (s *Service) CreateType(ctx context.Context, actorID string, t EvaluationType) (string, error) {
	t.ID = ""
	if err := s.Validator.Type(t); err != nil {
		return "", err
	}
	id, err := s.Store.CreateType(ctx, t)
	if err != nil {
		return "", err
	}
	s.record(ctx, actorID, "evaluation_type.create", "evaluation_type", id, t)
	return id, nil
}

func (s *Service) UpdateType(ctx context.Context, actorID string, t EvaluationType) error {
	if err := s.Validator.Type(t); err != nil {
		return err
	}
	if _, err := s.Store.GetType(ctx, t.ID); err != nil {
		return err
	}
	if err := s.Store.UpdateType(ctx, t); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_type.update", "evaluation_type", t.ID, t)
	return nil
}

func (s *Service) DeleteType(ctx context.Context, actorID, typeID string) error {
	if err := s.Store.DeleteType(ctx, typeID); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_type.delete", "evaluation_type", typeID, nil)
	return nil
}

func (s *Service) ListCycles(ctx context.Context) ([]Cycle, error) {
	return s.Store.ListCycles(ctx)
}

func (s *Service) CreateCycle(ctx context.Context, actorID string, c Cycle) (string, error) {
	c.ID = ""
	if err := s.checkCycle(ctx, c); err != nil {
		return "", err
	}
	id, err := s.Store.CreateCycle(ctx, c)
	if err != nil {
		return "", err
	}
	s.record(ctx, actorID, "evaluation_cycle.create", "evaluation_cycle", id, c)
	return id, nil
}

func (s *Service) UpdateCycle(ctx context.Context, actorID string, c Cycle) error {
	if _, err := s.Store.GetCycle(ctx, c.ID); err != nil {
		return err
	}
	if err := s.checkCycle(ctx, c); err != nil {
		return err
	}
	if err := s.Store.UpdateCycle(ctx, c); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_cycle.update", "evaluation_cycle", c.ID, c)
	return nil
}

func (s *Service) checkCycle(ctx context.Context, c Cycle) error {
	if err := s.Validator.Cycle(c); err != nil {
		return err
	}
	if _, err := s.Store.GetType(ctx, c.EvaluationTypeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ValidationError{Issues: []FieldIssue{{Field: "evaluationTypeId", Reason: "unknown evaluation type"}}}
		}
		return err
	}
	return nil
}

func (s *Service) DeleteCycle(ctx context.Context, actorID, cycleID string) error {
	if err := s.Store.DeleteCycle(ctx, cycleID); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_cycle.delete", "evaluation_cycle", cycleID, nil)
	return nil
}

func (s *Service) ListCriteria(ctx context.Context) ([]Criterion, error) {
	return s.Store.ListCriteria(ctx)
}

func (s *Service) CreateCriterion(ctx context.Context, actorID string, c Criterion) (string, error) {
	c.ID = ""
	if err := s.Validator.Criterion(c); err != nil {
		return "", err
	}
	c.EmployeeClass = CanonicalClass(c.EmployeeClass)
	id, err := s.Store.CreateCriterion(ctx, c)
	if err != nil {
		return "", err
	}
	s.record(ctx, actorID, "evaluation_criterion.create", "evaluation_criterion", id, c)
	return id, nil
}

func (s *Service) UpdateCriterion(ctx context.Context, actorID string, c Criterion) error {
	if err := s.Validator.Criterion(c); err != nil {
		return err
	}
	if _, err := s.Store.GetCriterion(ctx, c.ID); err != nil {
		return err
	}
	c.EmployeeClass = CanonicalClass(c.EmployeeClass)
	if err := s.Store.UpdateCriterion(ctx, c); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_criterion.update", "evaluation_criterion", c.ID, c)
	return nil
}

func (s *Service) DeleteCriterion(ctx context.Context, actorID, criterionID string) error {
	if err := s.Store.DeleteCriterion(ctx, criterionID); err != nil {
		return err
	}
	s.record(ctx, actorID, "evaluation_criterion.delete", "evaluation_criterion", criterionID, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actorID, action, entityType, entityID string, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, actorID, action, entityType, entityID, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTypeUnavailable), errors.Is(err, ErrAlreadyCompleted):
		return "ineligible"
	case errors.Is(err, ErrNoCriteria):
		return "no_criteria"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "error"
	}
}
