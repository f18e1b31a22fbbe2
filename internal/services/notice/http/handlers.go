// Package http provides http transport for notices
package http

import (
	stdctx "context"
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Reconciler fans pending staging markers out into delivery records
type Reconciler interface {
	Reconcile(ctx stdctx.Context) (int, error)
}

// Dispatcher sends unsent delivery records
type Dispatcher interface {
	Dispatch(ctx stdctx.Context) (int, error)
}

// Deps are the handler dependencies
type Deps struct {
	Ingester domain.IngesterPort
	Query    domain.QueryPort

	// wired for the save-and-dispatch endpoint
	Reconciler Reconciler
	Dispatcher Dispatcher
}

type handlers struct{ deps Deps }

// Register mounts notice endpoints on the given router
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.PostJSON[domain.Batch](r, "/", h.save)
	httpkit.PostJSON[domain.Batch](r, "/process", h.process)
	httpkit.Get(r, "/", h.list)
	httpkit.PatchJSON[stateChange](r, "/{id}/state", h.changeState)
}

// ProcessResponse reports one save-and-dispatch run
type ProcessResponse struct {
	domain.Report
	Recorded int `json:"recorded"`
	Sent     int `json:"sent"`
}

type stateChange struct {
	State string `json:"state" validate:"required"`
}

func (h *handlers) save(r *stdhttp.Request, in domain.Batch) (any, error) {
	return h.deps.Ingester.Ingest(r.Context(), in)
}

func (h *handlers) process(r *stdhttp.Request, in domain.Batch) (any, error) {
	ctx := r.Context()

	report, err := h.deps.Ingester.Ingest(ctx, in)
	if err != nil {
		return nil, err
	}
	recorded, err := h.deps.Reconciler.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	sent, err := h.deps.Dispatcher.Dispatch(ctx)
	if err != nil {
		return nil, err
	}

	return ProcessResponse{Report: report, Recorded: recorded, Sent: sent}, nil
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	state, err := domain.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		return nil, perr.WithField(err, "state")
	}
	return h.deps.Query.ListByState(r.Context(), state)
}

func (h *handlers) changeState(r *stdhttp.Request, in stateChange) (any, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, perr.Validationf("id must be an integer")
	}
	state, err := domain.ParseState(in.State)
	if err != nil {
		return nil, perr.WithField(err, "state")
	}
	if err := h.deps.Query.ChangeState(r.Context(), id, state); err != nil {
		return nil, err
	}
	return h.deps.Query.ByID(r.Context(), id)
}
