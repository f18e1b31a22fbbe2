package domain

import "context"

// IngesterPort saves scraped notices and stages delivery for new or changed ones
type IngesterPort interface {
	Ingest(ctx context.Context, batch Batch) (Report, error)
}

// QueryPort is the operator read/maintenance surface
type QueryPort interface {
	ListByState(ctx context.Context, state State) ([]Notice, error)
	ByID(ctx context.Context, id int64) (Notice, error)
	ChangeState(ctx context.Context, id int64, state State) error
}

// ReaderPort is the minimal read surface the dispatcher needs.
// Dispatch always sends a notice's current content, not a snapshot.
type ReaderPort interface {
	ByID(ctx context.Context, id int64) (Notice, error)
}
