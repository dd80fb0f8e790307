package cases

import (
	"context"
	"time"
)

// Repo defines persistence operations for cases. Saves are atomic
// whole-record or whole-report writes; partial analysis state is never
// visible to readers.
type Repo interface {
	Create(ctx context.Context, c Case) error
	GetByID(ctx context.Context, caseID string) (Case, error)
	List(ctx context.Context, limit, offset int) ([]Case, error)
	// ListAscending returns every case ordered by createdAt ascending, the
	// order batch score recomputation requires.
	ListAscending(ctx context.Context) ([]Case, error)
	// UpdateReport replaces the analysis report wholesale in one write.
	UpdateReport(ctx context.Context, caseID string, report *AnalysisReport) error
	UpdateScore(ctx context.Context, caseID string, score int) error
	// UpdateStatus performs a compare-and-swap transition: it succeeds only
	// if the case is currently in from, otherwise ErrStatusConflict.
	UpdateStatus(ctx context.Context, caseID string, from, to Status, res *Resolution) error
	// ListPriorBySubject returns cases created strictly before the given
	// time whose subject name or address matches the given identity under
	// case-insensitive bidirectional containment. Empty identity fields do
	// not match anything.
	ListPriorBySubject(ctx context.Context, name, address string, before time.Time) ([]Case, error)
}
