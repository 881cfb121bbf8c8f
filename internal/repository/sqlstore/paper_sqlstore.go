package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

// PaperStore implements repository.PaperRepository for SQLite and PostgreSQL.
// Queries are written with ? placeholders and rebound for the session's driver.
type PaperStore struct {
	q sqlx.ExtContext
}

// NewPaperStore creates a PaperStore that runs its statements through q,
// typically the transaction of a database.Session.
func NewPaperStore(q sqlx.ExtContext) *PaperStore {
	return &PaperStore{q: q}
}

var _ repository.PaperRepository = (*PaperStore)(nil)

type paperRow struct {
	ID        int64        `db:"id"`
	Title     string       `db:"title"`
	Level     string       `db:"level"`
	Config    model.Config `db:"config"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r paperRow) toModel() model.Paper {
	p := model.Paper{
		ID:     r.ID,
		Title:  r.Title,
		Level:  r.Level,
		Config: r.Config,
	}
	if r.CreatedAt.Valid {
		p.CreatedAt = r.CreatedAt.Time.UTC()
	}
	return p
}

// Create inserts a paper row and writes the assigned ID back to p.
// Values are bound as given; only a nil Config reaches the store as NULL.
func (r *PaperStore) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	const q = `
		INSERT INTO papers (title, level, config, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	p.Stamp()
	var id int64
	if err := r.q.QueryRowxContext(ctx, r.q.Rebind(q),
		p.Title,
		p.Level,
		p.Config,
		p.CreatedAt,
	).Scan(&id); err != nil {
		return nil, err
	}
	p.ID = id
	out := *p
	return &out, nil
}

// FindByID fetches a single paper by its ID.
func (r *PaperStore) FindByID(ctx context.Context, id int64) (*model.Paper, error) {
	const q = `
		SELECT id, title, level, config, created_at
		FROM papers
		WHERE id = ?
	`
	var row paperRow
	if err := sqlx.GetContext(ctx, r.q, &row, r.q.Rebind(q), id); err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

// List returns papers using LIMIT/OFFSET pagination and a total count.
func (r *PaperStore) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Paper], error) {
	where := ""
	var args []any
	if pq.Level != "" {
		where = " WHERE level = ?"
		args = append(args, pq.Level)
	}

	// Count total rows
	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, r.q.Rebind("SELECT COUNT(*) FROM papers"+where), args...); err != nil {
		return nil, err
	}

	// Fetch page
	qList := `SELECT id, title, level, config, created_at FROM papers` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	var rows []paperRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(qList), append(args, pq.Limit, pq.Offset)...); err != nil {
		return nil, err
	}

	items := make([]model.Paper, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return &repository.PageResult[model.Paper]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a paper by ID. It does not return an error if the row does not exist.
func (r *PaperStore) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM papers WHERE id = ?`
	_, err := r.q.ExecContext(ctx, r.q.Rebind(q), id)
	return err
}
