package domain

import (
	"context"
	"time"

	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Message is the channel-neutral payload handed to a Sender.
// It always carries the notice's current content, never a snapshot.
type Message struct {
	Title    string
	Link     string
	Content  *string
	Category noticedom.Category
	State    noticedom.State
	PostedAt time.Time
}

// Sender delivers one message to its channel.
// Any transport failure or non-2xx response is a send error; the caller keeps
// the delivery record unsent and there is no retry inside Send.
type Sender interface {
	Kind() Kind
	Send(ctx context.Context, msg Message) error
}
