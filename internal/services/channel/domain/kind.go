// Package domain defines outbound channel contracts shared by senders and dispatch
package domain

import (
	"strings"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

// Kind identifies an outbound delivery channel
type Kind string

// Supported channels. Delivery records fan out across all of these.
const (
	KindDiscord Kind = "DISCORD"
)

// Kinds returns every channel kind in a stable order
func Kinds() []Kind {
	return []Kind{KindDiscord}
}

// ParseKind maps a wire/storage string to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", perr.Validationf("unknown channel %q", s)
}

// String implements fmt.Stringer
func (k Kind) String() string { return string(k) }
