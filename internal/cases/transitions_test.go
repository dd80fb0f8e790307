package cases

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusOpen, StatusEscalated}:        true,
		{StatusOpen, StatusDisputed}:         true,
		{StatusUnderReview, StatusDisputed}:  true,
		{StatusUnderReview, StatusResolved}:  true,
		{StatusEscalated, StatusUnderReview}: true,
		{StatusEscalated, StatusDisputed}:    true,
		{StatusEscalated, StatusResolved}:    true,
		{StatusDisputed, StatusResolved}:     true,
	}

	all := []Status{StatusOpen, StatusUnderReview, StatusEscalated, StatusResolved, StatusDisputed}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestResolvedIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusOpen, StatusUnderReview, StatusEscalated, StatusDisputed, StatusResolved} {
		if CanTransition(StatusResolved, to) {
			t.Errorf("resolved must be terminal, but resolved -> %s allowed", to)
		}
	}
}

func TestValidateTransitionScoreGate(t *testing.T) {
	err := ValidateTransition(StatusOpen, StatusEscalated, EscalationThreshold-1, nil)
	if !IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition below threshold, got %v", err)
	}
	if err := ValidateTransition(StatusOpen, StatusEscalated, EscalationThreshold, nil); err != nil {
		t.Fatalf("expected transition at threshold to pass, got %v", err)
	}
	if err := ValidateTransition(StatusOpen, StatusEscalated, 5, nil); err != nil {
		t.Fatalf("expected transition above threshold to pass, got %v", err)
	}
}

func TestValidateTransitionResolutionRequired(t *testing.T) {
	res := &Resolution{ResolvedBy: "reviewer-1", ResolvedAt: time.Now().UTC()}

	tests := []struct {
		name string
		res  *Resolution
		want error
	}{
		{"nil resolution", nil, ErrMissingResolution},
		{"missing resolver", &Resolution{ResolvedAt: time.Now().UTC()}, ErrMissingResolution},
		{"missing timestamp", &Resolution{ResolvedBy: "reviewer-1"}, ErrMissingResolution},
		{"complete resolution", res, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(StatusDisputed, StatusResolved, 3, tt.res)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ValidateTransition = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateTransitionRejectsUnknownPair(t *testing.T) {
	err := ValidateTransition(StatusOpen, StatusUnderReview, 5, nil)
	if !IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected *InvalidTransitionError, got %T", err)
	}
	if ite.From != StatusOpen || ite.To != StatusUnderReview {
		t.Fatalf("error should carry both states, got %v", ite)
	}
}
