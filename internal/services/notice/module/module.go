// Package module implements the notice service module
package module

import (
	"net/http"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	str "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/strings"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	noticehttp "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/http"
	noticerepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/repo"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/service"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

// Ports exposed by the notice module
type Ports struct {
	Ingester domain.IngesterPort
	Query    domain.QueryPort
	Reader   domain.ReaderPort
}

// Module implements the notice service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	// wired after construction because dispatch depends on this module
	reconciler noticehttp.Reconciler
	dispatcher noticehttp.Dispatcher
}

// New constructs a notice module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("notice"),
		modkit.WithPrefix("/notices"),
	}, opts...)...)

	svc := service.New(deps.PG, noticerepo.NewPG(), stagingrepo.NewPG())

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}
	m.ports = Ports{
		Ingester: svc,
		Query:    svc,
		Reader:   svc,
	}
	return m
}

// WireProcess attaches the reconcile and dispatch stages used by the
// save-and-dispatch endpoint. Must be called before MountRoutes.
func (m *Module) WireProcess(rec noticehttp.Reconciler, disp noticehttp.Dispatcher) {
	m.reconciler = rec
	m.dispatcher = disp
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	if m.reconciler == nil || m.dispatcher == nil {
		panic("notice module: WireProcess must run before MountRoutes")
	}
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		noticehttp.Register(rr, noticehttp.Deps{
			Ingester:   m.ports.Ingester,
			Query:      m.ports.Query,
			Reconciler: m.reconciler,
			Dispatcher: m.dispatcher,
		})
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "notice") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
