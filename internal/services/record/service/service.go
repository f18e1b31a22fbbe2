// Package service provides the delivery record service implementation
package service

import (
	"context"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/logger"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
	recordrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/repo"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

// Service implements domain.ReconcilerPort, domain.QueryPort, and domain.StorePort
type Service struct {
	TX      repokit.TxRunner
	Records repokit.Binder[recordrepo.Storage]
	Markers repokit.Binder[stagingrepo.Storage]
	// Kinds defaults to every known channel
	Kinds []chandom.Kind
}

// New constructs a record service over the given runner and binders
func New(tx repokit.TxRunner, records repokit.Binder[recordrepo.Storage], markers repokit.Binder[stagingrepo.Storage]) *Service {
	return &Service{
		TX:      tx,
		Records: records,
		Markers: markers,
		Kinds:   chandom.Kinds(),
	}
}

// Reconcile implements domain.ReconcilerPort.
// Each marker fans out in its own transaction: insert one record per channel,
// then flag the marker. A crash between the two leaves the marker unrecorded
// and the next pass re-runs it; the record key absorbs the duplicates.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	markers, err := s.Markers.Bind(s.TX).ListUnrecorded(ctx)
	if err != nil {
		return 0, err
	}
	if len(markers) == 0 {
		return 0, nil
	}

	log := logger.C(ctx)
	done := 0
	for _, m := range markers {
		err := s.TX.Tx(ctx, func(q repokit.Queryer) error {
			rs := make([]domain.Record, 0, len(s.Kinds))
			for _, k := range s.Kinds {
				rs = append(rs, domain.Record{
					NoticeID:     m.NoticeID,
					Channel:      k,
					MarkerID:     m.ID,
					NoticeStatus: m.NoticeStatus,
				})
			}
			if err := s.Records.Bind(q).InsertBatch(ctx, rs); err != nil {
				return err
			}
			_, err := s.Markers.Bind(q).MarkRecorded(ctx, m.ID)
			return err
		})
		if err != nil {
			// leave the marker pending; the next pass retries it
			log.Error().Err(err).Str("marker_id", m.ID).Int64("notice_id", m.NoticeID).
				Msg("record fan-out failed")
			continue
		}
		done++
	}
	return done, nil
}

// ListUnsent implements domain.QueryPort and domain.StorePort
func (s *Service) ListUnsent(ctx context.Context) ([]domain.Record, error) {
	return s.Records.Bind(s.TX).ListUnsent(ctx)
}

// ListByChannel implements domain.QueryPort
func (s *Service) ListByChannel(ctx context.Context, kind chandom.Kind) ([]domain.Record, error) {
	return s.Records.Bind(s.TX).ListByChannel(ctx, kind)
}

// MarkSent implements domain.StorePort
func (s *Service) MarkSent(ctx context.Context, key domain.Key) (bool, error) {
	return s.Records.Bind(s.TX).MarkSent(ctx, key)
}
