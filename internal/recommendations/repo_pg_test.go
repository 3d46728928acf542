package recommendations

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{"id", "product_origin", "product_target", "relation", "dislike", "is_deleted", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateReturnsInsertedRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO recommendations").
		WithArgs(int64(10), int64(20), 1).
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow(int64(1), int64(10), int64(20), 1, int64(0), false, now, now))

	rec, err := repo.Create(context.Background(), Fields{ProductOrigin: 10, ProductTarget: 20, Relation: RelationCrossSell})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != 1 || rec.Dislike != 0 || rec.IsDeleted() {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Relation != RelationCrossSell {
		t.Fatalf("expected cross-sell, got %d", rec.Relation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMapsNoRowsToNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND NOT is_deleted")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	_, err := repo.GetByID(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateOnlyTouchesActiveRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SET product_origin = $2, product_target = $3, relation = $4")).
		WithArgs(int64(1), int64(10), int64(30), 2).
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow(int64(1), int64(10), int64(30), 2, int64(4), false, now, now))
	mock.ExpectQuery("UPDATE recommendations").
		WithArgs(int64(2), int64(1), int64(1), 1).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	rec, err := repo.Update(context.Background(), 1, Fields{ProductOrigin: 10, ProductTarget: 30, Relation: RelationUpSell})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Dislike != 4 || rec.ProductTarget != 30 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	_, err = repo.Update(context.Background(), 2, Fields{ProductOrigin: 1, ProductTarget: 1, Relation: RelationCrossSell})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSoftDeleteIgnoresMissingRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("SET is_deleted = TRUE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SoftDelete(context.Background(), 3); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoIncrementDislikeIsServerSide(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SET dislike = dislike + 1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow(int64(1), int64(10), int64(20), 1, int64(3), false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SET dislike = dislike + 1")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	rec, err := repo.IncrementDislike(context.Background(), 1)
	if err != nil {
		t.Fatalf("IncrementDislike: %v", err)
	}
	if rec.Dislike != 3 {
		t.Fatalf("expected dislike 3, got %d", rec.Dislike)
	}
	if _, err := repo.IncrementDislike(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSearchBuildsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE NOT is_deleted\nORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(1), int64(5), int64(6), 2, int64(0), false, now, now).
			AddRow(int64(2), int64(7), int64(8), 1, int64(1), false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE NOT is_deleted AND product_origin = $1 AND relation = $2")).
		WithArgs(int64(5), 2).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(1), int64(5), int64(6), 2, int64(0), false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE NOT is_deleted AND relation = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	all, err := repo.Search(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Search all: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("unexpected results: %+v", all)
	}

	origin := int64(5)
	upSell := RelationUpSell
	filtered, err := repo.Search(context.Background(), Filter{ProductOrigin: &origin, Relation: &upSell})
	if err != nil {
		t.Fatalf("Search filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Relation != RelationUpSell {
		t.Fatalf("unexpected filtered results: %+v", filtered)
	}

	accessory := RelationAccessory
	none, err := repo.Search(context.Background(), Filter{Relation: &accessory})
	if err != nil {
		t.Fatalf("Search empty: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoResetRestartsIdentity(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE recommendations RESTART IDENTITY")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
