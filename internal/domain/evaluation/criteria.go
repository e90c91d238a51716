package evaluation

import "sort"

// SelectCriteria returns the criteria that apply to an employee with the
// given class tags in the given department, in creation order. Entries
// created at the same instant keep their input order.
//
// A criterion applies when it is global or scoped to departmentID, and its
// class tags share at least one exact tag with the employee's. Unassigned
// employees only match criteria explicitly tagged unassigned.
func SelectCriteria(all []Criterion, employeeClass ClassTags, departmentID string) []Criterion {
	out := make([]Criterion, 0, len(all))
	for _, criterion := range all {
		if criterion.AppliesToDepartmentID != "" && criterion.AppliesToDepartmentID != departmentID {
			continue
		}
		if !classMatches(ParseClassTags(criterion.EmployeeClass), employeeClass) {
			continue
		}
		out = append(out, criterion)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func classMatches(criterionClass, employeeClass ClassTags) bool {
	if employeeClass.Unassigned() {
		return criterionClass.Unassigned()
	}
	return criterionClass.Intersects(employeeClass)
}

// ApplicableRecommendations keeps global entries and those scoped to departmentID.
func ApplicableRecommendations(all []Recommendation, departmentID string) []Recommendation {
	out := make([]Recommendation, 0, len(all))
	for _, rec := range all {
		if rec.AppliesToDepartmentID == "" || rec.AppliesToDepartmentID == departmentID {
			out = append(out, rec)
		}
	}
	return out
}

// ApplicableTrainingCourses keeps active courses that are global or scoped to departmentID.
func ApplicableTrainingCourses(all []TrainingCourse, departmentID string) []TrainingCourse {
	out := make([]TrainingCourse, 0, len(all))
	for _, course := range all {
		if !course.IsActive {
			continue
		}
		if course.AppliesToDepartmentID == "" || course.AppliesToDepartmentID == departmentID {
			out = append(out, course)
		}
	}
	return out
}
