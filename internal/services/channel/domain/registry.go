package domain

import (
	"fmt"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

// Registry resolves a Sender by channel kind
type Registry struct {
	senders map[Kind]Sender
}

// NewRegistry builds a registry from the given senders
func NewRegistry(senders ...Sender) Registry {
	m := make(map[Kind]Sender, len(senders))
	for _, s := range senders {
		m[s.Kind()] = s
	}
	return Registry{senders: m}
}

// MustComplete panics unless every known Kind has a sender.
// Call at startup so a half-wired registry never reaches dispatch.
func (r Registry) MustComplete() Registry {
	for _, k := range Kinds() {
		if _, ok := r.senders[k]; !ok {
			panic(fmt.Sprintf("channel registry: no sender for %s", k))
		}
	}
	return r
}

// Sender returns the sender for kind, or a configuration error
func (r Registry) Sender(k Kind) (Sender, error) {
	s, ok := r.senders[k]
	if !ok {
		return nil, perr.Configf("no sender registered for channel %s", k)
	}
	return s, nil
}
