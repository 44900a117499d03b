package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/orgball2608/network-feed/internal/command"
	"github.com/orgball2608/network-feed/internal/command/commandimpl"
	"github.com/orgball2608/network-feed/internal/migrations"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/network/networkimpl"
	repositories "github.com/orgball2608/network-feed/internal/repositories/fx"
	"github.com/orgball2608/network-feed/internal/server"
	"github.com/orgball2608/network-feed/internal/telegram"
	"github.com/orgball2608/network-feed/internal/telegram/telegramimpl"
	"github.com/orgball2608/network-feed/internal/watcher"
	"github.com/orgball2608/network-feed/internal/watcher/watcherimpl"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/logger"
	"github.com/orgball2608/network-feed/pkg/pgx"
	"go.uber.org/fx"
)

const commandRestartDelay = 5 * time.Second

var Module = fx.Options(
	fx.Provide(
		config.New,
		pgx.New,
		server.New,
	),
	fx.Provide(
		fx.Annotate(
			networkimpl.New,
			fx.As(new(network.Client)),
		),
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
		fx.Annotate(
			watcherimpl.New,
			fx.As(new(watcher.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func migrate(cfg *config.Config, log logger.Logger) error {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(context.Background(), db); err != nil {
		log.Error("Migration failed", "Error", err)
		return err
	}
	return nil
}

type runOpts struct {
	fx.In

	LC       fx.Lifecycle
	Logger   logger.Logger
	Config   *config.Config
	Server   *server.Server
	Telegram telegram.Client
	Command  command.Client
	Watcher  watcher.Client
}

func run(opts runOpts) {
	log := opts.Logger
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := opts.Server.Start(ctx); err != nil {
				return err
			}

			if err := opts.Watcher.Start(ctx); err != nil {
				log.Error("Watcher start error", "Error", err)
				notifyUser(opts, "Watcher start error: "+err.Error())
			}

			go func() {
				defer close(done)
				for {
					err := opts.Command.HandleCommand(ctx)
					if ctx.Err() != nil {
						return
					}
					if err != nil && !errors.Is(err, context.Canceled) {
						log.Error("Command error", "Error", err)
						notifyUser(opts, "Command error: "+err.Error())
					}

					select {
					case <-ctx.Done():
						return
					case <-time.After(commandRestartDelay):
					}
				}
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := opts.Watcher.Stop(); err != nil {
				log.Error("Watcher stop error", "Error", err)
			}

			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return opts.Server.Stop(stopCtx)
		},
	})
}

func notifyUser(opts runOpts, text string) {
	if opts.Config.Telegram.User == 0 {
		return
	}
	if _, err := opts.Telegram.SendMessage(opts.Config.Telegram.User, text); err != nil {
		opts.Logger.Error("Failed to notify user", "Error", err)
	}
}
