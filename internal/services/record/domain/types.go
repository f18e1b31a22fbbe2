// Package domain defines the delivery record types and ports
package domain

import (
	"time"

	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Record is one pending or completed delivery of a notice over one channel.
// The key is versioned by staging marker so an UPDATE fan-out creates fresh
// rows instead of colliding with already-sent rows from an earlier fan-out.
type Record struct {
	NoticeID     int64           `json:"notice_id"`
	Channel      chandom.Kind    `json:"channel"`
	MarkerID     string          `json:"marker_id"`
	NoticeStatus noticedom.State `json:"notice_status"`
	IsSent       bool            `json:"is_sent"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

// Key identifies a record uniquely
type Key struct {
	NoticeID int64
	Channel  chandom.Kind
	MarkerID string
}

// Key returns the record's identity triple
func (r Record) Key() Key {
	return Key{NoticeID: r.NoticeID, Channel: r.Channel, MarkerID: r.MarkerID}
}
