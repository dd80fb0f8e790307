package cases

import (
	"strings"
	"time"
)

// Status is the escalation lifecycle state of a case. It is a closed set;
// arbitrary strings are rejected at the boundary.
type Status string

const (
	StatusOpen        Status = "open"
	StatusUnderReview Status = "under_review"
	StatusEscalated   Status = "escalated"
	StatusResolved    Status = "resolved"
	StatusDisputed    Status = "disputed"
)

// ParseStatus validates a status value from an external caller.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusUnderReview:
		return StatusUnderReview, true
	case StatusEscalated:
		return StatusEscalated, true
	case StatusResolved:
		return StatusResolved, true
	case StatusDisputed:
		return StatusDisputed, true
	}
	return "", false
}

// Categories is the closed set of case categories.
var Categories = []string{"contract", "nda", "lease", "employment", "incident", "violation"}

// ValidCategory reports whether category belongs to the closed set.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Resolution records how a case was closed. Present only on resolved cases.
type Resolution struct {
	ResolvedBy string    `json:"resolvedBy"`
	Notes      string    `json:"notes"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Case is the unit of work analyzed and tracked through escalation.
type Case struct {
	ID             string          `json:"id"`
	SubjectName    string          `json:"subjectName"`
	SubjectAddress string          `json:"subjectAddress"`
	Category       string          `json:"category"`
	RawTextKey     string          `json:"rawTextKey"`
	Status         Status          `json:"status"`
	Score          int             `json:"score"`
	Report         *AnalysisReport `json:"analysisReport,omitempty"`
	Resolution     *Resolution     `json:"resolution,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
