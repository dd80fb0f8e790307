package cases

import (
	"context"
	"sort"
	"sync"
	"time"

	"caseflow-backend/internal/scoring"
)

// MemoryRepo stores cases in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Case
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Case)}
}

// Create stores the case.
func (r *MemoryRepo) Create(ctx context.Context, c Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

// GetByID returns a case by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, caseID string) (Case, error) {
	if err := ctx.Err(); err != nil {
		return Case{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[caseID]
	if !ok {
		return Case{}, ErrNotFound
	}
	return c, nil
}

// List returns cases newest-first with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	all, err := r.ListAscending(ctx)
	if err != nil {
		return nil, err
	}
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return []Case{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ListAscending returns all cases ordered by creation time ascending.
func (r *MemoryRepo) ListAscending(ctx context.Context) ([]Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Case, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateReport replaces the case's analysis report.
func (r *MemoryRepo) UpdateReport(ctx context.Context, caseID string, report *AnalysisReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[caseID]
	if !ok {
		return ErrNotFound
	}
	c.Report = report
	c.UpdatedAt = time.Now().UTC()
	r.byID[caseID] = c
	return nil
}

// UpdateScore sets the recomputed score.
func (r *MemoryRepo) UpdateScore(ctx context.Context, caseID string, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[caseID]
	if !ok {
		return ErrNotFound
	}
	c.Score = score
	c.UpdatedAt = time.Now().UTC()
	r.byID[caseID] = c
	return nil
}

// UpdateStatus transitions the case only if it is currently in from.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, caseID string, from, to Status, res *Resolution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[caseID]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return ErrStatusConflict
	}
	c.Status = to
	if res != nil {
		c.Resolution = res
	}
	c.UpdatedAt = time.Now().UTC()
	r.byID[caseID] = c
	return nil
}

// ListPriorBySubject returns earlier cases whose subject matches by name or
// address.
func (r *MemoryRepo) ListPriorBySubject(ctx context.Context, name, address string, before time.Time) ([]Case, error) {
	all, err := r.ListAscending(ctx)
	if err != nil {
		return nil, err
	}
	var out []Case
	for _, c := range all {
		if !c.CreatedAt.Before(before) {
			continue
		}
		if scoring.Matches(address, c.SubjectAddress) || scoring.Matches(name, c.SubjectName) {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
