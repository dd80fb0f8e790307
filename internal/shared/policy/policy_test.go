package policy

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		action   string
		resource string
		want     bool
	}{
		{"admin transitions", RoleAdmin, ActionTransition, ResourceCase, true},
		{"reviewer transitions", RoleReviewer, ActionTransition, ResourceCase, true},
		{"reviewer cannot create", RoleReviewer, ActionCreate, ResourceCase, false},
		{"intake creates", RoleIntake, ActionCreate, ResourceCase, true},
		{"intake cannot analyze", RoleIntake, ActionAnalyze, ResourceCase, false},
		{"system does everything", RoleSystem, ActionAnalyze, ResourceCase, true},
		{"unknown role denies", "auditor", ActionRead, ResourceCase, false},
		{"unknown action denies", RoleAdmin, "delete", ResourceCase, false},
		{"unknown resource denies", RoleAdmin, ActionRead, "report", false},
		{"empty role denies", "", ActionRead, ResourceCase, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(Actor{ID: "a-1", Role: tt.role}, tt.action, tt.resource)
			if got != tt.want {
				t.Fatalf("Evaluate(%q, %q, %q) = %v, want %v", tt.role, tt.action, tt.resource, got, tt.want)
			}
		})
	}
}
