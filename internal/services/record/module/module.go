// Package module implements the delivery record service module
package module

import (
	"net/http"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	str "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/strings"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
	recordhttp "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/http"
	recordrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/repo"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/service"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

// Ports exposed by the record module
type Ports struct {
	Reconciler domain.ReconcilerPort
	Query      domain.QueryPort
	Store      domain.StorePort
}

// Module implements the record service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
}

// New constructs a record module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("record"),
		modkit.WithPrefix("/records"),
	}, opts...)...)

	svc := service.New(deps.PG, recordrepo.NewPG(), stagingrepo.NewPG())

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}
	m.ports = Ports{
		Reconciler: svc,
		Query:      svc,
		Store:      svc,
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		recordhttp.Register(rr, m.ports.Query)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "record") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
