package domain

import (
	"context"

	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
)

// ReconcilerPort turns pending staging markers into delivery records
type ReconcilerPort interface {
	// Reconcile fans out every unrecorded marker and returns how many
	// markers were processed
	Reconcile(ctx context.Context) (int, error)
}

// QueryPort is the operator read surface
type QueryPort interface {
	ListByChannel(ctx context.Context, kind chandom.Kind) ([]Record, error)
	ListUnsent(ctx context.Context) ([]Record, error)
}

// StorePort is the surface the dispatcher drives
type StorePort interface {
	ListUnsent(ctx context.Context) ([]Record, error)
	// MarkSent flips is_sent=false to true; false means another pass got
	// there first (or the record vanished) and the send must not be recounted
	MarkSent(ctx context.Context, key Key) (bool, error)
}
