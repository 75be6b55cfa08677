package scan

// Status is the security classification of a dependency.
type Status int

// Classification results, ordered from benign to dangerous.
const (
	// StatusUnknown means the dependency has no findings or was not checked.
	StatusUnknown Status = iota
	// StatusSafe means the scanner checked the dependency and found nothing.
	StatusSafe
	// StatusWarning means the scanner failed while checking the dependency.
	StatusWarning
	// StatusDanger means at least one real vulnerability was reported.
	StatusDanger
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusSafe:
		return "safe"
	case StatusWarning:
		return "warning"
	case StatusDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Classify determines the security status of a dependency.
//
// Only the first finding is consulted; the scanner writes its verdict as the
// first element and any further entries are supplementary detail. An empty
// findings list and the NOT-CHECKED sentinel both classify as StatusUnknown.
func Classify(dep Dependency) Status {
	if len(dep.CVEs) == 0 {
		return StatusUnknown
	}
	switch dep.CVEs[0].ID {
	case FindingSafe:
		return StatusSafe
	case FindingNotChecked:
		return StatusUnknown
	case FindingCheckError:
		return StatusWarning
	default:
		return StatusDanger
	}
}
