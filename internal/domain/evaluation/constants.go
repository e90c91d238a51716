package evaluation

const (
	ReasonAvailable           = "available"
	ReasonPrerequisiteMissing = "prerequisite_missing"
	ReasonAlreadyCompleted    = "already_completed"
	ReasonOutsideCycle        = "outside_cycle"

	// UnassignedClass marks employees and criteria with no class tags.
	UnassignedClass = "unassigned"

	ClassSeparator = ","

	RatingExcellent    RatingBand = "Excellent"
	RatingVeryGood     RatingBand = "Very Good"
	RatingGood         RatingBand = "Good"
	RatingAcceptable   RatingBand = "Acceptable"
	RatingWeak         RatingBand = "Weak"
	RatingNotAvailable RatingBand = "Not Available"

	DefaultTypeSortOrder = 100
)

// DefaultEmployeeClasses is the class vocabulary used when none is configured.
var DefaultEmployeeClasses = []string{"A", "B", "C", "supervisor", "manager"}
