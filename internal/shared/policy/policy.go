// Package policy centralizes access decisions. Handlers never decide
// authorization inline; they ask Evaluate with the acting principal, the
// action, and the resource kind.
package policy

// Actor is the principal a request acts as.
type Actor struct {
	ID   string
	Role string
}

// Roles understood by the evaluator.
const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
	RoleIntake   = "intake"
	RoleSystem   = "system"
)

// Actions over case resources.
const (
	ActionRead       = "read"
	ActionCreate     = "create"
	ActionAnalyze    = "analyze"
	ActionScore      = "score"
	ActionTransition = "transition"
)

// ResourceCase is the only resource kind today.
const ResourceCase = "case"

var rolePermissions = map[string]map[string]bool{
	RoleAdmin: {
		ActionRead:       true,
		ActionCreate:     true,
		ActionAnalyze:    true,
		ActionScore:      true,
		ActionTransition: true,
	},
	RoleReviewer: {
		ActionRead:       true,
		ActionAnalyze:    true,
		ActionScore:      true,
		ActionTransition: true,
	},
	RoleIntake: {
		ActionRead:   true,
		ActionCreate: true,
	},
	RoleSystem: {
		ActionRead:       true,
		ActionCreate:     true,
		ActionAnalyze:    true,
		ActionScore:      true,
		ActionTransition: true,
	},
}

// Evaluate returns whether the actor may perform action on the resource
// kind. Unknown roles, actions, and resources all deny.
func Evaluate(actor Actor, action, resource string) bool {
	if resource != ResourceCase {
		return false
	}
	perms, ok := rolePermissions[actor.Role]
	if !ok {
		return false
	}
	return perms[action]
}
