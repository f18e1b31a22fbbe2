// Package service provides the dispatcher implementation
package service

import (
	"context"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/logger"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	recdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

// Service implements domain.DispatcherPort
type Service struct {
	Records recdom.StorePort
	Notices noticedom.ReaderPort
	Senders chandom.Registry
}

// New constructs a dispatcher over record storage, notice reads, and senders
func New(records recdom.StorePort, notices noticedom.ReaderPort, senders chandom.Registry) *Service {
	return &Service{Records: records, Notices: notices, Senders: senders}
}

// Dispatch implements domain.DispatcherPort.
// No transaction is held across the outbound call; the conditional MarkSent
// flip keeps overlapping passes from double-sending the same record.
func (s *Service) Dispatch(ctx context.Context) (int, error) {
	records, err := s.Records.ListUnsent(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	log := logger.C(ctx)
	sent := 0
	for _, rec := range records {
		if err := s.dispatchOne(ctx, rec); err != nil {
			log.Error().Err(err).
				Int64("notice_id", rec.NoticeID).
				Str("channel", rec.Channel.String()).
				Str("marker_id", rec.MarkerID).
				Msg("dispatch failed")
			continue
		}
		sent++
	}

	log.Info().Int("sent", sent).Int("pending", len(records)-sent).Msg("dispatch pass done")
	return sent, nil
}

func (s *Service) dispatchOne(ctx context.Context, rec recdom.Record) error {
	// always send the notice's current content, not what was staged
	n, err := s.Notices.ByID(ctx, rec.NoticeID)
	if err != nil {
		return err
	}

	sender, err := s.Senders.Sender(rec.Channel)
	if err != nil {
		return err
	}

	if err := sender.Send(ctx, chandom.Message{
		Title:    n.Title,
		Link:     n.Link,
		Content:  n.Content,
		Category: n.Category,
		State:    rec.NoticeStatus,
		PostedAt: n.CreatedAt,
	}); err != nil {
		return err
	}

	// ok=false means a concurrent pass already flipped it; the duplicate
	// send is the documented at-least-once cost, nothing to do here
	_, err = s.Records.MarkSent(ctx, rec.Key())
	return err
}
