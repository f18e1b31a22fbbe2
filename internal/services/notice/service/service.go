// Package service provides the notice ingestion and query implementation
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/logger"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	noticerepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/repo"
	stagdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/domain"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

// newMarkerID is a seam for deterministic ids in tests
var newMarkerID = uuid.NewString

// Service implements domain.IngesterPort, domain.QueryPort, and domain.ReaderPort
type Service struct {
	TX      repokit.TxRunner
	Notices repokit.Binder[noticerepo.Storage]
	Markers repokit.Binder[stagingrepo.Storage]
}

// New constructs a notice service over the given runner and binders
func New(tx repokit.TxRunner, notices repokit.Binder[noticerepo.Storage], markers repokit.Binder[stagingrepo.Storage]) *Service {
	return &Service{TX: tx, Notices: notices, Markers: markers}
}

// Ingest implements domain.IngesterPort.
// Each input is one transaction: upsert the notice and, when it is new or
// changed, queue a staging marker. A bad item is reported in Rejected and
// never aborts the rest of the batch.
func (s *Service) Ingest(ctx context.Context, batch domain.Batch) (domain.Report, error) {
	log := logger.C(ctx)
	var report domain.Report

	for _, in := range batch.Data {
		outcome, err := s.ingestOne(ctx, in)
		if err != nil {
			log.Warn().Err(err).Int64("num", in.Num).Msg("notice rejected")
			report.Rejected = append(report.Rejected, domain.Rejected{Num: in.Num, Reason: err.Error()})
			continue
		}
		switch outcome {
		case outcomeSaved:
			report.Saved++
		case outcomeUpdated:
			report.Updated++
		}
	}

	log.Info().Int("saved", report.Saved).Int("updated", report.Updated).
		Int("rejected", len(report.Rejected)).Msg("batch ingested")
	return report, nil
}

type ingestOutcome int

const (
	outcomeUnchanged ingestOutcome = iota
	outcomeSaved
	outcomeUpdated
)

func (s *Service) ingestOne(ctx context.Context, in domain.Input) (ingestOutcome, error) {
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return outcomeUnchanged, err
	}
	if in.Num <= 0 {
		return outcomeUnchanged, perr.Validationf("num must be positive")
	}
	if in.Title == "" {
		return outcomeUnchanged, perr.Validationf("title is required")
	}
	if in.Link == "" {
		return outcomeUnchanged, perr.Validationf("link is required")
	}
	if in.CreatedAt.Time.IsZero() {
		return outcomeUnchanged, perr.Validationf("created_at is required")
	}

	outcome := outcomeUnchanged
	err = s.TX.Tx(ctx, func(q repokit.Queryer) error {
		notices := s.Notices.Bind(q)
		markers := s.Markers.Bind(q)

		existing, err := notices.FindByNum(ctx, in.Num)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			saved, err := notices.Insert(ctx, domain.Notice{
				Num:       in.Num,
				Category:  category,
				Link:      in.Link,
				Title:     in.Title,
				Content:   in.Content,
				CreatedAt: in.CreatedAt.Time,
				Status:    domain.StateNew,
			})
			if err != nil {
				return err
			}
			outcome = outcomeSaved
			return markers.Insert(ctx, stagdom.Marker{
				ID:           newMarkerID(),
				NoticeID:     saved.ID,
				NoticeStatus: domain.StateNew,
			})
		}
		if err != nil {
			return err
		}

		// content compares verbatim, stored NULL and incoming "" are a change
		if !existing.Changed(in.Title, category, in.Content) {
			return nil
		}

		existing.Title = in.Title
		existing.Category = category
		existing.Content = in.Content
		existing.Link = in.Link
		existing.Status = domain.StateUpdated
		if err := notices.Update(ctx, existing); err != nil {
			return err
		}
		outcome = outcomeUpdated
		return markers.Insert(ctx, stagdom.Marker{
			ID:           newMarkerID(),
			NoticeID:     existing.ID,
			NoticeStatus: domain.StateUpdated,
		})
	})
	if err != nil {
		return outcomeUnchanged, err
	}
	return outcome, nil
}

// ListByState implements domain.QueryPort
func (s *Service) ListByState(ctx context.Context, state domain.State) ([]domain.Notice, error) {
	return s.Notices.Bind(s.TX).ListByState(ctx, state)
}

// ByID implements domain.QueryPort and domain.ReaderPort
func (s *Service) ByID(ctx context.Context, id int64) (domain.Notice, error) {
	return s.Notices.Bind(s.TX).ByID(ctx, id)
}

// ChangeState implements domain.QueryPort
func (s *Service) ChangeState(ctx context.Context, id int64, state domain.State) error {
	return s.Notices.Bind(s.TX).ChangeState(ctx, id, state)
}
