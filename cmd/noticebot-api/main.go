package main

import (
	"context"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/config"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/logger"
	phttp "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/net/http"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/api"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/discord"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres)
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "noticebot-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// refuse to boot against a store that cannot answer a ping
	repokit.MustGuard(context.Background(), st)

	// webhook senders come fully validated from env; a missing category URL
	// or channel sender should stop boot, not surface mid-dispatch
	senders := chandom.NewRegistry(discord.FromConfig(root)).MustComplete()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:  apiCfg,
			Store:   st,
			Senders: senders,
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
