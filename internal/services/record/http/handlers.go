// Package http provides http transport for delivery records
package http

import (
	stdhttp "net/http"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

type handlers struct{ query domain.QueryPort }

// Register mounts record endpoints on the given router
func Register(r httpkit.Router, query domain.QueryPort) {
	h := &handlers{query: query}

	httpkit.Get(r, "/", h.listByChannel)
	httpkit.Get(r, "/unsent", h.listUnsent)
}

func (h *handlers) listByChannel(r *stdhttp.Request) (any, error) {
	kind, err := chandom.ParseKind(r.URL.Query().Get("channel"))
	if err != nil {
		return nil, perr.WithField(err, "channel")
	}
	return h.query.ListByChannel(r.Context(), kind)
}

func (h *handlers) listUnsent(r *stdhttp.Request) (any, error) {
	return h.query.ListUnsent(r.Context())
}
