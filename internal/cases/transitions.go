package cases

// EscalationThreshold is the score at which an open case is escalated to
// board-level review.
const EscalationThreshold = 4

// transitions is the closed lifecycle table. A missing entry means the
// transition is rejected; resolved is terminal.
var transitions = map[Status][]Status{
	StatusOpen:        {StatusEscalated, StatusDisputed},
	StatusUnderReview: {StatusDisputed, StatusResolved},
	StatusEscalated:   {StatusUnderReview, StatusDisputed, StatusResolved},
	StatusDisputed:    {StatusResolved},
	StatusResolved:    {},
}

// CanTransition reports whether the lifecycle table allows from -> to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks from -> to against the lifecycle table and the
// per-target requirements. score gates Open -> Escalated; res is required
// when entering Resolved.
func ValidateTransition(from, to Status, score int, res *Resolution) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	if from == StatusOpen && to == StatusEscalated && score < EscalationThreshold {
		return &InvalidTransitionError{From: from, To: to, Reason: "score below escalation threshold"}
	}
	if to == StatusResolved {
		if res == nil || res.ResolvedBy == "" || res.ResolvedAt.IsZero() {
			return ErrMissingResolution
		}
	}
	return nil
}
