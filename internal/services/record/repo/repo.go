// Package repo provides the delivery record repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the delivery record repository
type Storage interface {
	// InsertBatch creates records, silently skipping keys that already
	// exist so a crashed fan-out can re-run
	InsertBatch(ctx context.Context, rs []domain.Record) error
	ListUnsent(ctx context.Context) ([]domain.Record, error)
	ListByChannel(ctx context.Context, kind chandom.Kind) ([]domain.Record, error)
	MarkSent(ctx context.Context, key domain.Key) (bool, error)
}

const recordCols = `notice_id, channel, marker_id, notice_status, is_sent, created_at, updated_at`

func scanRecord(r store.Row) (domain.Record, error) {
	var rec domain.Record
	var channel, status string
	if err := r.Scan(
		&rec.NoticeID, &channel, &rec.MarkerID, &status,
		&rec.IsSent, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return domain.Record{}, err
	}
	var err error
	if rec.Channel, err = chandom.ParseKind(channel); err != nil {
		return domain.Record{}, perr.DBf("record notice %d: %v", rec.NoticeID, err)
	}
	if rec.NoticeStatus, err = noticedom.ParseState(status); err != nil {
		return domain.Record{}, perr.DBf("record notice %d: %v", rec.NoticeID, err)
	}
	return rec, nil
}

// InsertBatch implements Storage
func (s *pg) InsertBatch(ctx context.Context, rs []domain.Record) error {
	if len(rs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO delivery_record (notice_id, channel, marker_id, notice_status) VALUES `)

	args := make([]any, 0, len(rs)*4)
	for i, r := range rs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*4 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", base, base+1, base+2, base+3)
		args = append(args, r.NoticeID, r.Channel.String(), r.MarkerID, r.NoticeStatus.String())
	}
	// Idempotent for crash-recovery re-runs of the same marker
	sb.WriteString(` ON CONFLICT (notice_id, channel, marker_id) DO NOTHING`)

	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgres(err, "insert delivery records")
}

// ListUnsent implements Storage
func (s *pg) ListUnsent(ctx context.Context) ([]domain.Record, error) {
	return store.Many(ctx, s.q, scanRecord, `
		SELECT `+recordCols+`
		FROM delivery_record
		WHERE NOT is_sent
		ORDER BY created_at, notice_id, channel`)
}

// ListByChannel implements Storage
func (s *pg) ListByChannel(ctx context.Context, kind chandom.Kind) ([]domain.Record, error) {
	return store.Many(ctx, s.q, scanRecord, `
		SELECT `+recordCols+`
		FROM delivery_record
		WHERE channel = $1
		ORDER BY created_at, notice_id`, kind.String())
}

// MarkSent implements Storage
func (s *pg) MarkSent(ctx context.Context, key domain.Key) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE delivery_record
		SET is_sent = true, updated_at = now()
		WHERE notice_id = $1 AND channel = $2 AND marker_id = $3 AND NOT is_sent`,
		key.NoticeID, key.Channel.String(), key.MarkerID,
	)
	if err != nil {
		return false, perr.FromPostgres(err, "mark record sent")
	}
	return tag.RowsAffected() == 1, nil
}
