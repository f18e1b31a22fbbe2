package domain

import (
	"strings"
	"time"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

// boardTimeLayout is the crawler's timestamp format
const boardTimeLayout = "2006-01-02 15:04:05"

// BoardTime decodes the crawler's "YYYY-MM-DD HH:mm:ss" timestamps from JSON
type BoardTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (b *BoardTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return perr.Validationf("created_at is required")
	}
	t, err := time.Parse(boardTimeLayout, s)
	if err != nil {
		return perr.Validationf("created_at must be %q formatted: %v", boardTimeLayout, err)
	}
	b.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler
func (b BoardTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.Time.Format(boardTimeLayout) + `"`), nil
}

// Input is one scraped notice as posted by the crawler
type Input struct {
	Num       int64     `json:"num" validate:"required,gt=0"`
	Category  string    `json:"category" validate:"required"`
	Link      string    `json:"link" validate:"required,url"`
	Title     string    `json:"title" validate:"required"`
	Content   *string   `json:"content"`
	CreatedAt BoardTime `json:"created_at" validate:"required"`
}

// Batch is the ingestion envelope posted by the crawler
type Batch struct {
	// elements are validated per-item by the service so one bad input
	// cannot reject the whole batch
	Data []Input `json:"data" validate:"required,min=1"`
}

// Rejected describes one input the batch skipped and why
type Rejected struct {
	Num    int64  `json:"num"`
	Reason string `json:"reason"`
}

// Report summarizes one ingested batch
type Report struct {
	Saved    int        `json:"saved"`
	Updated  int        `json:"updated"`
	Rejected []Rejected `json:"rejected,omitempty"`
}
