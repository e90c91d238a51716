package evaluation

import "time"

type EvaluationType struct {
	ID                 string    `json:"id"`
	TypeName           string    `json:"typeName" validate:"required,max=100"`
	DisplayName        string    `json:"displayName" validate:"required,max=200"`
	IsRepeatable       bool      `json:"isRepeatable"`
	PrerequisiteTypeID string    `json:"prerequisiteTypeId,omitempty"`
	SortOrder          int       `json:"sortOrder" validate:"gte=0"`
	CreatedAt          time.Time `json:"createdAt"`
}

type Cycle struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required,max=200"`
	EvaluationTypeID string    `json:"evaluationTypeId" validate:"required"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	IsEnabled        bool      `json:"isEnabled"`
	DepartmentIDs    []string  `json:"departmentIds"`
}

type Criterion struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name" validate:"required,max=200"`
	Weight                float64   `json:"weight" validate:"gt=0,lte=1"`
	MaxScore              int       `json:"maxScore" validate:"gt=0"`
	AppliesToDepartmentID string    `json:"appliesToDepartmentId,omitempty"`
	EmployeeClass         string    `json:"employeeClass" validate:"required"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Availability is one catalog entry as seen by a given employee and evaluator.
type Availability struct {
	TypeID           string `json:"typeId"`
	DisplayName      string `json:"displayName"`
	Usable           bool   `json:"usable"`
	ReasonCode       string `json:"reasonCode"`
	PrerequisiteID   string `json:"prerequisiteId,omitempty"`
	PrerequisiteName string `json:"prerequisiteName,omitempty"`
	Note             string `json:"note"`
}

type Evaluation struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EvaluatorID      string     `json:"evaluatorId"`
	EvaluationTypeID string     `json:"evaluationTypeId"`
	TypeDisplayName  string     `json:"typeDisplayName,omitempty"`
	Comments         string     `json:"comments"`
	RecommendationID string     `json:"recommendationId,omitempty"`
	TrainingCourseID string     `json:"trainingCourseId,omitempty"`
	OverallScore     *float64   `json:"overallScore,omitempty"`
	OverallRating    RatingBand `json:"overallRating"`
	EvaluatedAt      time.Time  `json:"evaluatedAt"`
	Details          []Detail   `json:"details,omitempty"`
}

// Detail is one scored criterion. Position preserves the accumulation order
// used when the summary was computed.
type Detail struct {
	EvaluationID  string  `json:"evaluationId,omitempty"`
	CriterionID   string  `json:"criterionId"`
	CriterionName string  `json:"criterionName,omitempty"`
	Weight        float64 `json:"weight"`
	MaxScore      int     `json:"maxScore"`
	ScoreGiven    int     `json:"scoreGiven"`
	Position      int     `json:"position"`
}

type EmployeeProfile struct {
	EmployeeID   string `json:"employeeId"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId"`
	ClassTags    string `json:"employeeClass"`
}

type Recommendation struct {
	ID                    string `json:"id"`
	Text                  string `json:"text"`
	AppliesToDepartmentID string `json:"appliesToDepartmentId,omitempty"`
}

type TrainingCourse struct {
	ID                    string `json:"id"`
	Text                  string `json:"text"`
	AppliesToDepartmentID string `json:"appliesToDepartmentId,omitempty"`
	IsActive              bool   `json:"isActive"`
}

type Submission struct {
	EmployeeID       string            `json:"employeeId"`
	EvaluatorID      string            `json:"evaluatorId"`
	EvaluationTypeID string            `json:"evaluationTypeId"`
	Comments         string            `json:"comments"`
	RecommendationID string            `json:"recommendationId,omitempty"`
	TrainingCourseID string            `json:"trainingCourseId,omitempty"`
	Scores           map[string]string `json:"scores"`
}

type EvaluationForm struct {
	Employee         EmployeeProfile  `json:"employee"`
	Criteria         []Criterion      `json:"criteria"`
	Availability     []Availability   `json:"availability"`
	Recommendations  []Recommendation `json:"recommendations"`
	TrainingCourses  []TrainingCourse `json:"trainingCourses"`
	EvaluatorDeptID  string           `json:"evaluatorDepartmentId"`
	EligibilityError bool             `json:"degraded,omitempty"`
}

type ListFilter struct {
	EmployeeID       string
	EvaluatorID      string
	EvaluationTypeID string
	RecommendationID string
	TrainingCourseID string
	From             time.Time
	To               time.Time
	Limit            int
	Offset           int
}
