package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/config"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/logger"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"

	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/discord"
	dispatchsvc "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/dispatch/service"
	noticerepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/repo"
	noticesvc "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/service"
	recordrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/repo"
	recordsvc "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/service"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

func main() {
	root := config.New()
	relayCfg := root.Prefix("CORE_RELAY_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "noticebot-relay",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
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

	senders := chandom.NewRegistry(discord.FromConfig(root)).MustComplete()

	// the relay drives the same reconcile and dispatch stages the API exposes,
	// just on a schedule instead of per save request
	notices := noticesvc.New(st.PG, noticerepo.NewPG(), stagingrepo.NewPG())
	records := recordsvc.New(st.PG, recordrepo.NewPG(), stagingrepo.NewPG())
	dispatcher := dispatchsvc.New(records, notices, senders)

	spec := relayCfg.MayString("CRON", "@every 1m")

	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		ctx := context.Background()

		recorded, err := records.Reconcile(ctx)
		if err != nil {
			l.Error().Err(err).Msg("reconcile sweep failed")
			return
		}

		sent, err := dispatcher.Dispatch(ctx)
		if err != nil {
			l.Error().Err(err).Msg("dispatch sweep failed")
			return
		}

		if recorded > 0 || sent > 0 {
			l.Info().Int("recorded", recorded).Int("sent", sent).Msg("relay sweep complete")
		}
	})
	if err != nil {
		l.Panic().Err(err).Str("spec", spec).Msg("bad relay cron spec")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.Info().Str("spec", spec).Msg("relay scheduler starting")
	c.Start()

	<-ctx.Done()
	l.Info().Msg("relay scheduler stopping")

	// let an in-flight sweep finish before exiting
	<-c.Stop().Done()
}
