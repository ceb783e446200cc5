package mastery

// Status is a node's position in the unlock lifecycle.
type Status string

const (
	StatusLocked   Status = "locked"   // One or more prerequisites not yet completed
	StatusUnlocked Status = "unlocked" // Prerequisites met; not yet mastered
	StatusMastered Status = "mastered" // Exam passed (lesson) or every child lesson mastered
)

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusUnlocked:
		return "🔓"
	case StatusMastered:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusUnlocked:
		return "Unlocked"
	case StatusMastered:
		return "Mastered"
	default:
		return "Unknown"
	}
}

// NodeState pairs a status with a 0-100 progress percentage.
type NodeState struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
}

var (
	lockedState   = NodeState{Status: StatusLocked, Progress: 0}
	unlockedState = NodeState{Status: StatusUnlocked, Progress: 0}
	masteredState = NodeState{Status: StatusMastered, Progress: 100}
)
