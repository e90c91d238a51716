package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSeed = `
types:
  - key: annual
    typeName: annual
    displayName: Annual review
    repeatable: true
    prerequisite: probation
  - key: probation
    typeName: probation
    displayName: Probation review
    sortOrder: 10
cycles:
  - name: 2024 annual
    type: annual
    startDate: "2024-01-01"
    endDate: "2024-12-31"
    departments: [d1]
criteria:
  - {name: Quality, weight: 0.6, maxScore: 5, employeeClass: A}
  - {name: Leadership, weight: 0.4, maxScore: 5, employeeClass: "manager, supervisor", department: d1}
recommendations:
  - {text: Keep going}
trainingCourses:
  - {text: Time management, department: d1}
  - {text: Retired course, active: false}
employees:
  - {id: emp-1, name: Dana, department: d1, employeeClass: A}
`

func TestParseAndCheckSeed(t *testing.T) {
	seed, err := ParseCatalogSeed([]byte(sampleSeed))
	require.NoError(t, err)
	require.Len(t, seed.Types, 2)
	assert.NoError(t, seed.Check(NewCatalogValidator(DefaultEmployeeClasses)))
}

func TestSeedCheckPrefixesIssues(t *testing.T) {
	seed, err := ParseCatalogSeed([]byte(`
types:
  - {key: a, typeName: a}
  - {key: a, typeName: b, displayName: B}
cycles:
  - {name: c, type: missing, startDate: "2024-13-01", endDate: "2024-12-31"}
criteria:
  - {name: q, weight: 0, maxScore: 5, employeeClass: A}
employees:
  - {name: nobody}
`))
	require.NoError(t, err)

	fields := issueFields(t, seed.Check(NewCatalogValidator(DefaultEmployeeClasses)))
	assert.ElementsMatch(t, []string{
		"types[0].displayName",
		"types[1].key",
		"cycles[0].startDate",
		"cycles[0].type",
		"criteria[0].weight",
		"employees[0].id",
	}, fields)
}

func TestSeedCheckRejectsPrerequisiteLoop(t *testing.T) {
	seed, err := ParseCatalogSeed([]byte(`
types:
  - {key: a, typeName: a, displayName: A, prerequisite: b}
  - {key: b, typeName: b, displayName: B, prerequisite: a}
`))
	require.NoError(t, err)
	assert.ErrorIs(t, seed.Check(NewCatalogValidator(DefaultEmployeeClasses)), ErrConfiguration)
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)
	svc, _, _ := newTestService(t, store)
	seed, err := ParseCatalogSeed([]byte(sampleSeed))
	require.NoError(t, err)

	require.NoError(t, ApplySeed(ctx, svc, store, "system", seed))

	types, err := svc.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Probation review", types[0].DisplayName)
	assert.Equal(t, types[0].ID, types[1].PrerequisiteTypeID)

	cycles, err := store.ListCycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, types[1].ID, cycles[0].EvaluationTypeID)
	assert.True(t, cycles[0].IsEnabled)

	criteria, err := store.ListCriteria(ctx)
	require.NoError(t, err)
	assert.Len(t, criteria, 2)

	courses, err := store.ListTrainingCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, ApplicableTrainingCourses(courses, "d1"), 1)

	profile, err := store.EmployeeProfile(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "d1", profile.DepartmentID)

	require.NoError(t, ApplySeed(ctx, svc, store, "system", seed))
	again, err := svc.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2, "a populated catalog is left alone")
}
