// Package repo provides the delivery staging repository implementation.
package repo

import (
	"context"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	stagdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the delivery staging repository
type Storage interface {
	// Insert queues a marker. A pending (unrecorded) marker for the same
	// notice absorbs the insert; the partial unique index enforces that.
	Insert(ctx context.Context, m stagdom.Marker) error
	ListUnrecorded(ctx context.Context) ([]stagdom.Marker, error)
	// MarkRecorded flips recorded=false to true. Returns false when the
	// marker was already recorded (or missing), so overlapping reconcile
	// passes cannot double fan-out.
	MarkRecorded(ctx context.Context, id string) (bool, error)
}

func scanMarker(r store.Row) (stagdom.Marker, error) {
	var m stagdom.Marker
	var status string
	if err := r.Scan(&m.ID, &m.NoticeID, &status, &m.Recorded, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return stagdom.Marker{}, err
	}
	var err error
	if m.NoticeStatus, err = domain.ParseState(status); err != nil {
		return stagdom.Marker{}, perr.DBf("staging marker %s: %v", m.ID, err)
	}
	return m, nil
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, m stagdom.Marker) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO delivery_staging (id, notice_id, notice_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (notice_id) WHERE NOT recorded DO NOTHING`,
		m.ID, m.NoticeID, m.NoticeStatus.String(),
	)
	return perr.FromPostgres(err, "insert staging marker")
}

// ListUnrecorded implements Storage
func (s *pg) ListUnrecorded(ctx context.Context) ([]stagdom.Marker, error) {
	return store.Many(ctx, s.q, scanMarker, `
		SELECT id, notice_id, notice_status, recorded, created_at, updated_at
		FROM delivery_staging
		WHERE NOT recorded
		ORDER BY created_at`)
}

// MarkRecorded implements Storage
func (s *pg) MarkRecorded(ctx context.Context, id string) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE delivery_staging
		SET recorded = true, updated_at = now()
		WHERE id = $1 AND NOT recorded`,
		id,
	)
	if err != nil {
		return false, perr.FromPostgres(err, "mark staging recorded")
	}
	return tag.RowsAffected() == 1, nil
}
