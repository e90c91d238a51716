package evaluation

import "context"

// StoreAPI is the persistence collaborator. Implementations must write an
// evaluation and its details in one transaction and refuse a second
// evaluation of a non-repeatable type for the same employee with
// ErrAlreadyCompleted. Type writes run CheckTypeWrite against the catalog in
// the same transaction, serialized with other type writes.
type StoreAPI interface {
	Ping(ctx context.Context) error

	CompletedTypeIDs(ctx context.Context, employeeID string) ([]string, error)
	EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error)
	EvaluatorDepartment(ctx context.Context, evaluatorID string) (string, error)

	ListTypes(ctx context.Context) ([]EvaluationType, error)
	GetType(ctx context.Context, typeID string) (EvaluationType, error)
	CreateType(ctx context.Context, t EvaluationType) (string, error)
	UpdateType(ctx context.Context, t EvaluationType) error
	DeleteType(ctx context.Context, typeID string) error

	ListCycles(ctx context.Context) ([]Cycle, error)
	GetCycle(ctx context.Context, cycleID string) (Cycle, error)
	CreateCycle(ctx context.Context, c Cycle) (string, error)
	UpdateCycle(ctx context.Context, c Cycle) error
	DeleteCycle(ctx context.Context, cycleID string) error

	ListCriteria(ctx context.Context) ([]Criterion, error)
	GetCriterion(ctx context.Context, criterionID string) (Criterion, error)
	CreateCriterion(ctx context.Context, c Criterion) (string, error)
	UpdateCriterion(ctx context.Context, c Criterion) error
	DeleteCriterion(ctx context.Context, criterionID string) error

	ListRecommendations(ctx context.Context) ([]Recommendation, error)
	ListTrainingCourses(ctx context.Context) ([]TrainingCourse, error)

	CreateEvaluation(ctx context.Context, e Evaluation, details []Detail) (string, error)
	GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error)
	ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error)
	DeleteEvaluation(ctx context.Context, evaluationID string) error
}

// Auditor records who changed what. Failures are logged, never returned.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, after any) error
}
