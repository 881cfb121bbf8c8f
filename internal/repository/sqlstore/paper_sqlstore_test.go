package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

var paperColumns = []string{"id", "title", "level", "config", "created_at"}

func newMockStore(t *testing.T, driverName string) (*PaperStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPaperStore(sqlx.NewDb(db, driverName)), mock
}

func TestPaperStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")

		created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		p := &model.Paper{
			Title:     "Midterm",
			Level:     "intro",
			Config:    model.Config{"duration_min": 60},
			CreatedAt: created,
		}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO papers (title, level, config, created_at)")).
			WithArgs("Midterm", "intro", `{"duration_min":60}`, created).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		result, err := repo.Create(ctx, p)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), result.ID)
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, created, result.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stamps missing created_at", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")

		mock.ExpectQuery("INSERT INTO papers").
			WithArgs("Quiz", "basic", "{}", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		p := &model.Paper{Title: "Quiz", Level: "basic", Config: model.Config{}}
		_, err := repo.Create(ctx, p)

		assert.NoError(t, err)
		assert.False(t, p.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty strings are bound as values, nil config as NULL", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")

		mock.ExpectQuery("INSERT INTO papers").
			WithArgs("", "", nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

		_, err := repo.Create(ctx, model.NewPaper("", "", nil))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres placeholders", func(t *testing.T) {
		repo, mock := newMockStore(t, "pgx")

		mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4)")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		_, err := repo.Create(ctx, model.NewPaper("Final", "advanced", model.Config{"rows": 5}))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store error is returned unchanged", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")
		storeErr := errors.New("NOT NULL constraint failed: papers.config")

		mock.ExpectQuery("INSERT INTO papers").WillReturnError(storeErr)

		result, err := repo.Create(ctx, model.NewPaper("Midterm", "intro", nil))

		assert.ErrorIs(t, err, storeErr)
		assert.Nil(t, result)
	})
}

func TestPaperStore_FindByID(t *testing.T) {
	repo, mock := newMockStore(t, "sqlite")
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		rows := sqlmock.NewRows(paperColumns).
			AddRow(1, "Midterm", "intro", `{"sections":[{"name":"A","points":10}]}`, created)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, level, config, created_at")).
			WithArgs(int64(1)).
			WillReturnRows(rows)

		p, err := repo.FindByID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, "Midterm", p.Title)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, []any{map[string]any{"name": "A", "points": json.Number("10")}}, p.Config["sections"])
	})

	t.Run("null created_at", func(t *testing.T) {
		rows := sqlmock.NewRows(paperColumns).AddRow(2, "Legacy", "intro", `{}`, nil)
		mock.ExpectQuery("SELECT (.+) FROM papers").WithArgs(int64(2)).WillReturnRows(rows)

		p, err := repo.FindByID(ctx, 2)

		require.NoError(t, err)
		assert.True(t, p.CreatedAt.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM papers").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(paperColumns))

		p, err := repo.FindByID(ctx, 404)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM papers")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(paperColumns).
			AddRow(1, "Midterm", "intro", `{"duration_min":60}`, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM papers\\s+ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("level filter", func(t *testing.T) {
		repo, mock := newMockStore(t, "pgx")

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM papers WHERE level = $1")).
			WithArgs("advanced").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE level = $1")).
			WithArgs("advanced", 5, 10).
			WillReturnRows(sqlmock.NewRows(paperColumns))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 5, Offset: 10, Level: "advanced"})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		repo, mock := newMockStore(t, "sqlite")
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("db fail"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestPaperStore_Delete(t *testing.T) {
	repo, mock := newMockStore(t, "sqlite")
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM papers WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(ctx, 9)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
