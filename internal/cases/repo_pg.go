package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const caseColumns = `id, subject_name, subject_address, category, raw_text_key, status, score, report, resolution, created_at, updated_at`

// Create inserts a new case.
func (r *PGRepo) Create(ctx context.Context, c Case) error {
	const query = `
INSERT INTO cases (id, subject_name, subject_address, category, raw_text_key, status, score, report, resolution, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	report, err := marshalNullable(c.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	resolution, err := marshalNullable(c.Resolution)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		c.ID, c.SubjectName, c.SubjectAddress, c.Category, c.RawTextKey,
		string(c.Status), c.Score, report, resolution, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetByID returns a case by its ID.
func (r *PGRepo) GetByID(ctx context.Context, caseID string) (Case, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, caseID)
	return scanCase(row)
}

// List returns cases newest-first with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Case, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// ListAscending returns all cases ordered by creation time ascending.
func (r *PGRepo) ListAscending(ctx context.Context) ([]Case, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// UpdateReport replaces the analysis report in a single write.
func (r *PGRepo) UpdateReport(ctx context.Context, caseID string, report *AnalysisReport) error {
	payload, err := marshalNullable(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE cases SET report = $2, updated_at = $3 WHERE id = $1`,
		caseID, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateScore sets the recomputed score.
func (r *PGRepo) UpdateScore(ctx context.Context, caseID string, score int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE cases SET score = $2, updated_at = $3 WHERE id = $1`,
		caseID, score, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus performs the compare-and-swap transition. The WHERE clause on
// the current status serializes concurrent transitions per case: the losing
// writer matches zero rows and gets ErrStatusConflict.
func (r *PGRepo) UpdateStatus(ctx context.Context, caseID string, from, to Status, resolution *Resolution) error {
	payload, err := marshalNullable(resolution)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `
UPDATE cases SET status = $3, resolution = COALESCE($4, resolution), updated_at = $5
WHERE id = $1 AND status = $2`,
		caseID, string(from), string(to), payload, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing case from a lost race.
		if _, getErr := r.GetByID(ctx, caseID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// ListPriorBySubject returns earlier cases matching the subject identity by
// name or address, case-insensitively, either value containing the other.
func (r *PGRepo) ListPriorBySubject(ctx context.Context, name, address string, before time.Time) ([]Case, error) {
	const query = `
SELECT ` + caseColumns + ` FROM cases
WHERE created_at < $3
AND (
	($1 <> '' AND subject_name <> '' AND
		(position(lower(subject_name) in lower($1)) > 0 OR position(lower($1) in lower(subject_name)) > 0))
	OR
	($2 <> '' AND subject_address <> '' AND
		(position(lower(subject_address) in lower($2)) > 0 OR position(lower($2) in lower(subject_address)) > 0))
)
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, name, address, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (Case, error) {
	var c Case
	var status string
	var report, resolution []byte
	err := row.Scan(&c.ID, &c.SubjectName, &c.SubjectAddress, &c.Category, &c.RawTextKey,
		&status, &c.Score, &report, &resolution, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, err
	}
	c.Status = Status(status)
	if len(report) > 0 {
		c.Report = &AnalysisReport{}
		if err := json.Unmarshal(report, c.Report); err != nil {
			return Case{}, fmt.Errorf("unmarshal report: %w", err)
		}
	}
	if len(resolution) > 0 {
		c.Resolution = &Resolution{}
		if err := json.Unmarshal(resolution, c.Resolution); err != nil {
			return Case{}, fmt.Errorf("unmarshal resolution: %w", err)
		}
	}
	return c, nil
}

func scanCases(rows *sql.Rows) ([]Case, error) {
	var out []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *AnalysisReport:
		if val == nil {
			return nil, nil
		}
	case *Resolution:
		if val == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
