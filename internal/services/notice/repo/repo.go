// Package repo provides the notice repository implementation.
package repo

import (
	"context"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the notice repository
type Storage interface {
	FindByNum(ctx context.Context, num int64) (domain.Notice, error)
	Insert(ctx context.Context, n domain.Notice) (domain.Notice, error)
	Update(ctx context.Context, n domain.Notice) error
	ByID(ctx context.Context, id int64) (domain.Notice, error)
	ListByState(ctx context.Context, state domain.State) ([]domain.Notice, error)
	ChangeState(ctx context.Context, id int64, state domain.State) error
}

const noticeCols = `id, num, category, link, title, content, created_at, status, saved_at, updated_at`

func scanNotice(r store.Row) (domain.Notice, error) {
	var n domain.Notice
	var cat, status string
	if err := r.Scan(
		&n.ID, &n.Num, &cat, &n.Link, &n.Title, &n.Content,
		&n.CreatedAt, &status, &n.SavedAt, &n.UpdatedAt,
	); err != nil {
		return domain.Notice{}, err
	}
	var err error
	if n.Category, err = domain.ParseCategory(cat); err != nil {
		return domain.Notice{}, perr.DBf("notice %d: %v", n.ID, err)
	}
	if n.Status, err = domain.ParseState(status); err != nil {
		return domain.Notice{}, perr.DBf("notice %d: %v", n.ID, err)
	}
	return n, nil
}

// FindByNum implements Storage
func (s *pg) FindByNum(ctx context.Context, num int64) (domain.Notice, error) {
	return store.One(ctx, s.q, scanNotice,
		`SELECT `+noticeCols+` FROM notice WHERE num = $1`, num)
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, n domain.Notice) (domain.Notice, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO notice (num, category, link, title, content, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, saved_at`,
		n.Num, n.Category.String(), n.Link, n.Title, n.Content, n.CreatedAt, n.Status.String(),
	)
	if err := row.Scan(&n.ID, &n.SavedAt); err != nil {
		return domain.Notice{}, perr.FromPostgres(err, "insert notice")
	}
	return n, nil
}

// Update implements Storage
func (s *pg) Update(ctx context.Context, n domain.Notice) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE notice
		SET category = $2, link = $3, title = $4, content = $5, status = $6, updated_at = now()
		WHERE id = $1`,
		n.ID, n.Category.String(), n.Link, n.Title, n.Content, n.Status.String(),
	)
	if err != nil {
		return perr.FromPostgres(err, "update notice")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("notice %d not found", n.ID)
	}
	return nil
}

// ByID implements Storage
func (s *pg) ByID(ctx context.Context, id int64) (domain.Notice, error) {
	return store.One(ctx, s.q, scanNotice,
		`SELECT `+noticeCols+` FROM notice WHERE id = $1`, id)
}

// ListByState implements Storage
func (s *pg) ListByState(ctx context.Context, state domain.State) ([]domain.Notice, error) {
	return store.Many(ctx, s.q, scanNotice,
		`SELECT `+noticeCols+` FROM notice WHERE status = $1 ORDER BY num`, state.String())
}

// ChangeState implements Storage
func (s *pg) ChangeState(ctx context.Context, id int64, state domain.State) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE notice SET status = $2, updated_at = now() WHERE id = $1`,
		id, state.String(),
	)
	if err != nil {
		return perr.FromPostgres(err, "change notice state")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("notice %d not found", id)
	}
	return nil
}
