package evaluation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal/internal/platform/db"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "evaluations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	store, err := NewSQLiteStore(ctx, conn)
	require.NoError(t, err)
	return store
}

// fixture is a small catalog: a non-repeatable probation type, a
// repeatable annual type gated on it, two class A criteria and one
// employee with an evaluator in the same department.
type fixture struct {
	probationID string
	annualID    string
	qualityID   string
	teamworkID  string
}

func seedFixture(t *testing.T, store *SQLiteStore) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.probationID, err = store.CreateType(ctx, EvaluationType{TypeName: "probation", DisplayName: "Probation", SortOrder: 10})
	require.NoError(t, err)
	f.annualID, err = store.CreateType(ctx, EvaluationType{TypeName: "annual", DisplayName: "Annual", IsRepeatable: true, PrerequisiteTypeID: f.probationID, SortOrder: 20})
	require.NoError(t, err)
	f.qualityID, err = store.CreateCriterion(ctx, Criterion{Name: "Quality", Weight: 0.5, MaxScore: 10, EmployeeClass: "A"})
	require.NoError(t, err)
	f.teamworkID, err = store.CreateCriterion(ctx, Criterion{Name: "Teamwork", Weight: 0.5, MaxScore: 20, EmployeeClass: "A"})
	require.NoError(t, err)

	require.NoError(t, store.UpsertEmployee(ctx, EmployeeProfile{EmployeeID: "emp-1", Name: "Dana", DepartmentID: "d1", ClassTags: "A"}))
	require.NoError(t, store.UpsertEmployee(ctx, EmployeeProfile{EmployeeID: "mgr-1", Name: "Lee", DepartmentID: "d1", ClassTags: "manager"}))
	return f
}

func storedEvaluation(f fixture, typeID string, at time.Time) (Evaluation, []Detail) {
	pct := 65.0
	e := Evaluation{
		EmployeeID:       "emp-1",
		EvaluatorID:      "mgr-1",
		EvaluationTypeID: typeID,
		OverallScore:     &pct,
		OverallRating:    RatingAcceptable,
		EvaluatedAt:      at,
	}
	details := []Detail{
		{CriterionID: f.qualityID, Weight: 0.5, MaxScore: 10, ScoreGiven: 8, Position: 0},
		{CriterionID: f.teamworkID, Weight: 0.5, MaxScore: 20, ScoreGiven: 10, Position: 1},
	}
	return e, details
}

func TestSQLiteEvaluationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	at := time.Date(2024, 3, 5, 10, 30, 0, 123, time.UTC)
	e, details := storedEvaluation(f, f.probationID, at)
	id, err := store.CreateEvaluation(ctx, e, details)
	require.NoError(t, err)

	got, err := store.GetEvaluation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Probation", got.TypeDisplayName)
	assert.True(t, at.Equal(got.EvaluatedAt))
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 65.0, *got.OverallScore)
	require.Len(t, got.Details, 2)
	assert.Equal(t, "Quality", got.Details[0].CriterionName)
	assert.Equal(t, 20, got.Details[1].MaxScore)

	completed, err := store.CompletedTypeIDs(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, []string{f.probationID}, completed)

	_, err = store.GetEvaluation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteNonRepeatableGuard(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	e, details := storedEvaluation(f, f.probationID, time.Now())
	_, err := store.CreateEvaluation(ctx, e, details)
	require.NoError(t, err)
	_, err = store.CreateEvaluation(ctx, e, details)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	annual, details := storedEvaluation(f, f.annualID, time.Now())
	_, err = store.CreateEvaluation(ctx, annual, details)
	require.NoError(t, err)
	_, err = store.CreateEvaluation(ctx, annual, details)
	require.NoError(t, err)
}

func TestSQLiteCreateEvaluationIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	e, details := storedEvaluation(f, f.probationID, time.Now())
	details[1].CriterionID = "no-such-criterion"
	_, err := store.CreateEvaluation(ctx, e, details)
	require.Error(t, err)

	list, err := store.ListEvaluations(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteDeleteGuards(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	assert.ErrorIs(t, store.DeleteType(ctx, f.probationID), ErrInUse, "referenced as prerequisite")

	e, details := storedEvaluation(f, f.annualID, time.Now())
	id, err := store.CreateEvaluation(ctx, e, details)
	require.NoError(t, err)
	assert.ErrorIs(t, store.DeleteType(ctx, f.annualID), ErrInUse)
	assert.ErrorIs(t, store.DeleteCriterion(ctx, f.qualityID), ErrInUse)

	require.NoError(t, store.DeleteEvaluation(ctx, id))
	require.NoError(t, store.DeleteCriterion(ctx, f.qualityID))
	require.NoError(t, store.DeleteType(ctx, f.annualID))
	assert.ErrorIs(t, store.DeleteType(ctx, f.annualID), ErrNotFound)
	assert.ErrorIs(t, store.DeleteEvaluation(ctx, id), ErrNotFound)
}

func TestSQLiteCycleDepartments(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	id, err := store.CreateCycle(ctx, Cycle{
		Name:             "2024 H1",
		EvaluationTypeID: f.annualID,
		StartDate:        day(2024, 1, 1),
		EndDate:          day(2024, 6, 30),
		IsEnabled:        true,
		DepartmentIDs:    []string{"d2", "d1"},
	})
	require.NoError(t, err)

	got, err := store.GetCycle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, got.DepartmentIDs)
	assert.Equal(t, day(2024, 6, 30), got.EndDate)

	got.DepartmentIDs = []string{"d3"}
	got.IsEnabled = false
	require.NoError(t, store.UpdateCycle(ctx, got))

	all, err := store.ListCycles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"d3"}, all[0].DepartmentIDs)
	assert.False(t, all[0].IsEnabled)

	assert.ErrorIs(t, store.DeleteType(ctx, f.annualID), ErrInUse, "cycle still references the type")
	require.NoError(t, store.DeleteCycle(ctx, id))
	_, err = store.GetCycle(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListFilters(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	for i, at := range []time.Time{
		time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	} {
		e, details := storedEvaluation(f, f.annualID, at)
		if i == 2 {
			e.EvaluatorID = "mgr-2"
		}
		_, err := store.CreateEvaluation(ctx, e, details)
		require.NoError(t, err)
	}

	january, err := store.ListEvaluations(ctx, ListFilter{From: day(2024, 1, 1), To: day(2024, 1, 31)})
	require.NoError(t, err)
	require.Len(t, january, 2)
	assert.True(t, january[0].EvaluatedAt.After(january[1].EvaluatedAt), "newest first")

	byEvaluator, err := store.ListEvaluations(ctx, ListFilter{EvaluatorID: "mgr-2"})
	require.NoError(t, err)
	assert.Len(t, byEvaluator, 1)

	page, err := store.ListEvaluations(ctx, ListFilter{EmployeeID: "emp-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLiteListTypesOrder(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	_, err := store.CreateType(ctx, EvaluationType{TypeName: "b", DisplayName: "Beta", SortOrder: 5})
	require.NoError(t, err)
	_, err = store.CreateType(ctx, EvaluationType{TypeName: "a", DisplayName: "Alpha", SortOrder: 5})
	require.NoError(t, err)
	_, err = store.CreateType(ctx, EvaluationType{TypeName: "z", DisplayName: "Zulu", SortOrder: 1})
	require.NoError(t, err)

	types, err := store.ListTypes(ctx)
	require.NoError(t, err)
	names := []string{types[0].DisplayName, types[1].DisplayName, types[2].DisplayName}
	assert.Equal(t, []string{"Zulu", "Alpha", "Beta"}, names)
}

func TestSQLiteEmployeeUpsertCanonicalizesClass(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	require.NoError(t, store.UpsertEmployee(ctx, EmployeeProfile{EmployeeID: "e", Name: "E", DepartmentID: "d", ClassTags: "B, A"}))
	require.NoError(t, store.UpsertEmployee(ctx, EmployeeProfile{EmployeeID: "e", Name: "E2", DepartmentID: "d9", ClassTags: ""}))

	p, err := store.EmployeeProfile(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, "E2", p.Name)
	assert.Equal(t, UnassignedClass, p.ClassTags)

	dept, err := store.EvaluatorDepartment(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, "d9", dept)

	_, err = store.EmployeeProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteTypeWritesCheckCatalog(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	f := seedFixture(t, store)

	_, err := store.CreateType(ctx, EvaluationType{TypeName: "orphan", DisplayName: "Orphan", PrerequisiteTypeID: "missing"})
	assert.ErrorIs(t, err, ErrValidation)

	probation, err := store.GetType(ctx, f.probationID)
	require.NoError(t, err)
	probation.PrerequisiteTypeID = f.annualID
	assert.ErrorIs(t, store.UpdateType(ctx, probation), ErrConfiguration)

	catalog, err := store.ListTypes(ctx)
	require.NoError(t, err)
	assert.NoError(t, ValidatePrerequisites(catalog))
	for _, typ := range catalog {
		if typ.ID == f.probationID {
			assert.Empty(t, typ.PrerequisiteTypeID)
		}
	}
}

func TestSQLiteCriteriaListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)

	names := []string{"Quality", "Delivery", "Teamwork", "Ownership", "Attendance", "Initiative"}
	for _, name := range names {
		_, err := store.CreateCriterion(ctx, Criterion{Name: name, Weight: 0.5, MaxScore: 5, EmployeeClass: "A"})
		require.NoError(t, err)
	}

	listed, err := store.ListCriteria(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(listed))
	for _, c := range listed {
		got = append(got, c.Name)
		assert.False(t, c.CreatedAt.IsZero())
	}
	assert.Equal(t, names, got)
}
