// Package domain defines the delivery staging marker types
package domain

import (
	"time"

	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Marker queues one notice save/update for delivery record fan-out.
// At most one unrecorded marker exists per notice; a second save of the same
// notice before reconciliation collapses into the pending marker.
type Marker struct {
	ID           string          `json:"id"` // uuid, app-generated
	NoticeID     int64           `json:"notice_id"`
	NoticeStatus noticedom.State `json:"notice_status"`
	Recorded     bool            `json:"recorded"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}
