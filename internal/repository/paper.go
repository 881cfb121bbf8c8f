package repository

import (
	"context"

	"paperapi/internal/model"
)

// PaperRepository defines data access for papers using SQL queries only.
// Implementations run inside the caller's session; they never commit.
type PaperRepository interface {
	// Create inserts a new paper. The store assigns the ID, which is written back to p.
	// Empty Title/Level and a nil Config are sent as NULL and rejected by the store.
	Create(ctx context.Context, p *model.Paper) (*model.Paper, error)

	// FindByID returns a paper by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.Paper, error)

	// List returns a page of papers, newest first, and the total rows count for the filter.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Paper], error)

	// Delete removes a paper by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}

// PageQuery holds limit/offset pagination parameters and an optional level filter.
type PageQuery struct {
	Limit  int
	Offset int
	Level  string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
