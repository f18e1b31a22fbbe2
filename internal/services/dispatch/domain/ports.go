// Package domain defines the dispatcher port
package domain

import "context"

// DispatcherPort sends every unsent delivery record over its channel
type DispatcherPort interface {
	// Dispatch returns how many records were sent this pass. Send failures
	// are logged, leave their record unsent, and do not stop the pass.
	Dispatch(ctx context.Context) (int, error)
}
