package cases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func caseRows(cases ...Case) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "subject_name", "subject_address", "category", "raw_text_key",
		"status", "score", "report", "resolution", "created_at", "updated_at",
	})
	for _, c := range cases {
		rows.AddRow(c.ID, c.SubjectName, c.SubjectAddress, c.Category, c.RawTextKey,
			string(c.Status), c.Score, nil, nil, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	c := Case{
		ID:             "case-1",
		SubjectName:    "Acme Holdings",
		SubjectAddress: "1 Way",
		Category:       "lease",
		RawTextKey:     "texts/case-1.txt",
		Status:         StatusOpen,
		Score:          1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectExec("INSERT INTO cases").
		WithArgs(c.ID, c.SubjectName, c.SubjectAddress, c.Category, c.RawTextKey,
			string(c.Status), c.Score, nil, nil, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM cases WHERE id").
		WithArgs("missing").
		WillReturnRows(caseRows())

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStatusCompareAndSwap(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE cases SET status").
		WithArgs("case-1", string(StatusOpen), string(StatusEscalated), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "case-1", StatusOpen, StatusEscalated, nil)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE cases SET status").
		WithArgs("case-1", string(StatusOpen), string(StatusEscalated), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The follow-up read distinguishes a lost race from a missing case.
	mock.ExpectQuery("SELECT (.+) FROM cases WHERE id").
		WithArgs("case-1").
		WillReturnRows(caseRows(Case{
			ID: "case-1", Category: "lease", RawTextKey: "texts/case-1.txt",
			Status: StatusDisputed, Score: 2, CreatedAt: now, UpdatedAt: now,
		}))

	err := repo.UpdateStatus(context.Background(), "case-1", StatusOpen, StatusEscalated, nil)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestPGRepoUpdateStatusMissingCase(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE cases SET status").
		WithArgs("missing", string(StatusOpen), string(StatusEscalated), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM cases WHERE id").
		WithArgs("missing").
		WillReturnRows(caseRows())

	err := repo.UpdateStatus(context.Background(), "missing", StatusOpen, StatusEscalated, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListPriorBySubject(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	before := now.Add(-time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM cases").
		WithArgs("Acme Holdings", "1 Way", before).
		WillReturnRows(caseRows(Case{
			ID: "prior-1", SubjectName: "Acme Holdings LLC", Category: "lease",
			RawTextKey: "texts/prior-1.txt", Status: StatusResolved, Score: 1,
			CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour),
		}))

	priors, err := repo.ListPriorBySubject(context.Background(), "Acme Holdings", "1 Way", before)
	if err != nil {
		t.Fatalf("ListPriorBySubject: %v", err)
	}
	if len(priors) != 1 || priors[0].ID != "prior-1" {
		t.Fatalf("unexpected priors: %+v", priors)
	}
}
