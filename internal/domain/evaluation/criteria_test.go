package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClassTags(t *testing.T) {
	tags := ParseClassTags(" B, A ,,A")
	assert.Equal(t, []string{"A", "B"}, tags.Sorted())
	assert.Equal(t, "A,B", tags.String())

	assert.True(t, ParseClassTags("").Unassigned())
	assert.True(t, ParseClassTags("Unassigned").Unassigned())
	assert.Equal(t, UnassignedClass, ParseClassTags(" , ").String())
}

func TestClassTagsMatchExactly(t *testing.T) {
	assert.True(t, NewClassTags("A", "B").Intersects(NewClassTags("B")))
	assert.False(t, NewClassTags("A").Intersects(NewClassTags("AB")))
	assert.False(t, NewClassTags("A").Intersects(NewClassTags("a")))
	assert.False(t, NewClassTags().Intersects(NewClassTags("A")))
}

func TestSelectCriteria(t *testing.T) {
	all := []Criterion{
		{ID: "c3", Name: "Global A", EmployeeClass: "A"},
		{ID: "c1", Name: "Sales AB", EmployeeClass: "A,B", AppliesToDepartmentID: "sales"},
		{ID: "c2", Name: "Ops A", EmployeeClass: "A", AppliesToDepartmentID: "ops"},
		{ID: "c4", Name: "Supervisors", EmployeeClass: "supervisor"},
		{ID: "c5", Name: "Unassigned only", EmployeeClass: UnassignedClass},
		{ID: "c6", Name: "Longer tag", EmployeeClass: "AB"},
	}

	got := SelectCriteria(all, NewClassTags("A"), "sales")
	assert.Equal(t, []string{"c3", "c1"}, criterionIDs(got))

	got = SelectCriteria(all, NewClassTags("B", "supervisor"), "ops")
	assert.Equal(t, []string{"c4"}, criterionIDs(got))

	got = SelectCriteria(all, ParseClassTags(""), "sales")
	assert.Equal(t, []string{"c5"}, criterionIDs(got))

	assert.Empty(t, SelectCriteria(all, NewClassTags("C"), "sales"))
}

func TestSelectCriteriaKeepsCreationOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	all := []Criterion{
		{ID: "0f9", Name: "Delivery", EmployeeClass: "A", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "fff", Name: "Quality", EmployeeClass: "A", CreatedAt: base},
		{ID: "a10", Name: "Teamwork", EmployeeClass: "A", CreatedAt: base.Add(time.Minute)},
		{ID: "001", Name: "Ownership", EmployeeClass: "A", CreatedAt: base.Add(time.Minute)},
	}

	got := SelectCriteria(all, NewClassTags("A"), "ops")
	assert.Equal(t, []string{"Quality", "Teamwork", "Ownership", "Delivery"}, criterionNames(got))
}

func criterionNames(list []Criterion) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func TestApplicableFollowUps(t *testing.T) {
	recs := []Recommendation{{ID: "r1"}, {ID: "r2", AppliesToDepartmentID: "sales"}, {ID: "r3", AppliesToDepartmentID: "ops"}}
	got := ApplicableRecommendations(recs, "sales")
	assert.Len(t, got, 2)
	assert.Equal(t, "r2", got[1].ID)

	courses := []TrainingCourse{
		{ID: "t1", IsActive: true},
		{ID: "t2", IsActive: false},
		{ID: "t3", IsActive: true, AppliesToDepartmentID: "ops"},
	}
	active := ApplicableTrainingCourses(courses, "sales")
	assert.Len(t, active, 1)
	assert.Equal(t, "t1", active[0].ID)
}

func criterionIDs(list []Criterion) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}
