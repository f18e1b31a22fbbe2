// Package api provides the HTTP API for the application
package api

import (
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/config"
	phttp "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/net/http"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/httpkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/module"

	metamod "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/api/meta/module"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	dispatchmod "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/dispatch/module"
	noticemod "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/module"
	recordmod "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Store   *store.Store
	Senders chandom.Registry
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	notice := noticemod.New(deps)
	record := recordmod.New(deps)

	// dispatch reads unsent records, resolves notices fresh, and pushes to the
	// configured channel senders
	dispatch := dispatchmod.New(
		deps,
		modkit.WithPorts(dispatchmod.Wiring{
			Records: record.Ports().(recordmod.Ports).Store,
			Notices: notice.Ports().(noticemod.Ports).Reader,
			Senders: opt.Senders,
		}),
	)

	// the save-and-dispatch endpoint runs reconcile then dispatch, so the
	// notice module needs both ports before its routes mount
	notice.WireProcess(
		record.Ports().(recordmod.Ports).Reconciler,
		dispatch.Ports().(dispatchmod.Ports).Dispatcher,
	)

	mods := []module.Module{
		metamod.New(deps),
		notice,
		record,
		dispatch,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
