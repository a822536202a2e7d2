package engine

// PersonRecord is one configured friend, decoded from FRIENDS_CONFIG.
// Records are rebuilt from configuration on every check and never mutated.
type PersonRecord struct {
	// Name is used verbatim in subjects and message bodies.
	Name string `json:"name"`

	// Date is "D/M" or "D/M/Y". An empty value (absent or null) disables
	// every notification for the record.
	Date string `json:"date"`

	// NotificationBefore is the advance-warning lead time in days.
	// Zero disables advance warnings.
	NotificationBefore int `json:"notification_before"`
}

// EventKind identifies which of the three notification rules matched.
type EventKind int

const (
	EventBirthday EventKind = iota
	EventAdvance
	EventMilestone
)

// String returns the label used in logs and metrics.
func (k EventKind) String() string {
	switch k {
	case EventBirthday:
		return "birthday"
	case EventAdvance:
		return "advance"
	case EventMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// Event is a rule match for one record on one day.
type Event struct {
	Kind EventKind

	// Date carries the record's original date string (Advance payload).
	Date string

	// Days carries the number of days since birth (Milestone payload).
	Days int
}
