// Package module implements the dispatcher module
package module

import (
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/dispatch/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/dispatch/service"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	recdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

// Wiring is the cross-module input injected via modkit.WithPorts
type Wiring struct {
	Records recdom.StorePort
	Notices noticedom.ReaderPort
	Senders chandom.Registry
}

// Ports exposed by the dispatch module
type Ports struct {
	Dispatcher domain.DispatcherPort
}

// Module implements the dispatcher module. It mounts no routes; dispatch runs
// from the save-and-dispatch endpoint and the relay worker.
type Module struct {
	deps  modkit.Deps
	name  string
	ports Ports
}

// New constructs a dispatch module; wiring must be provided via WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("dispatch"),
	}, opts...)...)

	w, ok := b.Ports.(Wiring)
	if !ok {
		panic("dispatch module: Wiring ports are required")
	}

	svc := service.New(w.Records, w.Notices, w.Senders)

	m := &Module{deps: deps, name: b.Name}
	m.ports = Ports{Dispatcher: svc}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
