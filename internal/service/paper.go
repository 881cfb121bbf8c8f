package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"paperapi/internal/database"
	"paperapi/internal/model"
	"paperapi/internal/repository"
	"paperapi/internal/storage"
)

var (
	ErrInvalidID      = errors.New("id must be a positive integer")
	ErrNotFound       = errors.New("paper not found")
	ErrExportDisabled = errors.New("paper export is not configured")
)

// PaperListResult is the service-level DTO for paginated papers.
type PaperListResult struct {
	Items []model.Paper `json:"data"`
	Total int           `json:"total"`
}

// CreatePaperInput carries the caller-owned fields of a new paper.
type CreatePaperInput struct {
	Title  string       `json:"title"`
	Level  string       `json:"level"`
	Config model.Config `json:"config"`
}

// ExportResult points at an exported copy of a paper configuration.
type ExportResult struct {
	PaperID   int64     `json:"paper_id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PaperService defines the use cases for stored paper configurations.
type PaperService interface {
	// Create stores a new paper and commits it.
	Create(ctx context.Context, in CreatePaperInput) (*model.Paper, error)

	// List returns papers using limit/offset, optionally filtered by level, and a total count.
	List(ctx context.Context, limit, offset int, level string) (*PaperListResult, error)

	// Get returns a single paper by its ID.
	Get(ctx context.Context, id int64) (*model.Paper, error)

	// Delete removes a paper by ID and commits.
	Delete(ctx context.Context, id int64) error

	// Export uploads the paper configuration to object storage and returns a presigned URL.
	Export(ctx context.Context, id int64) (*ExportResult, error)
}

// SessionProvider hands out scoped sessions; *database.Engine implements it.
type SessionProvider interface {
	GetDB(ctx context.Context, fn func(s *database.Session) error) error
}

// RepositoryFactory binds a repository to the transaction of one session.
type RepositoryFactory func(q sqlx.ExtContext) repository.PaperRepository

type paperService struct {
	db            SessionProvider
	newRepo       RepositoryFactory
	store         storage.Storage
	presignExpiry time.Duration
}

// NewPaperService constructs a PaperService. store may be nil, which disables Export.
func NewPaperService(db SessionProvider, newRepo RepositoryFactory, store storage.Storage, presignExpiry time.Duration) PaperService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &paperService{db: db, newRepo: newRepo, store: store, presignExpiry: presignExpiry}
}

// inSession runs fn against a repository bound to one scoped session.
func (s *paperService) inSession(ctx context.Context, fn func(repo repository.PaperRepository, sess *database.Session) error) error {
	return s.db.GetDB(ctx, func(sess *database.Session) error {
		tx, err := sess.Tx(ctx)
		if err != nil {
			return err
		}
		return fn(s.newRepo(tx), sess)
	})
}

func (s *paperService) Create(ctx context.Context, in CreatePaperInput) (*model.Paper, error) {
	var stored *model.Paper
	err := s.inSession(ctx, func(repo repository.PaperRepository, sess *database.Session) error {
		p, err := repo.Create(ctx, model.NewPaper(in.Title, in.Level, in.Config))
		if err != nil {
			return err
		}
		if err := sess.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		stored = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create paper: %w", err)
	}
	return stored, nil
}

// List returns paginated papers without exposing repository types.
func (s *paperService) List(ctx context.Context, limit, offset int, level string) (*PaperListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var res *repository.PageResult[model.Paper]
	err := s.inSession(ctx, func(repo repository.PaperRepository, _ *database.Session) error {
		var err error
		res, err = repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, Level: level})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PaperListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *paperService) Get(ctx context.Context, id int64) (*model.Paper, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var p *model.Paper
	err := s.inSession(ctx, func(repo repository.PaperRepository, _ *database.Session) error {
		var err error
		p, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *paperService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	err := s.inSession(ctx, func(repo repository.PaperRepository, sess *database.Session) error {
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return sess.Commit()
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *paperService) Export(ctx context.Context, id int64) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p.Config)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	obj, err := s.store.PutExport(ctx, storage.PaperExport{
		PaperID: p.ID,
		Title:   p.Title,
		Level:   p.Level,
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	u, err := s.store.PresignDownload(ctx, obj.Key, s.presignExpiry)
	if err != nil {
		// An export nobody can reach is removed
		if delErr := s.store.Remove(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &ExportResult{
		PaperID:   p.ID,
		Key:       obj.Key,
		URL:       u,
		ExpiresAt: time.Now().UTC().Add(s.presignExpiry),
	}, nil
}
