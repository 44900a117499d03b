package commandimpl

import (
	"sync"
	"time"

	"github.com/orgball2608/network-feed/internal/command"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/ratelimit"
	"github.com/orgball2608/network-feed/internal/telegram"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Network  network.Client
	Telegram telegram.Client
	Logger   logger.Logger
	Config   *config.Config
}

type CommandImpl struct {
	Network  network.Client
	Telegram telegram.Client
	Logger   logger.Logger
	Config   *config.Config

	limiter ratelimit.Limiter
	// workers bounds how many updates are handled at once.
	workers int

	mu       sync.Mutex
	sessions map[int64]*session
	now      func() time.Time
}

const (
	defaultWorkers = 16
	// sessionTTL is how long an untouched feed keeps working.
	sessionTTL = 6 * time.Hour
)

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Network:  opts.Network,
		Telegram: opts.Telegram,
		Logger:   opts.Logger.WithComponent("Command"),
		Config:   opts.Config,
		limiter:  ratelimit.NewInMemoryLimiter(1, 2*time.Second, 5),
		workers:  defaultWorkers,
		sessions: make(map[int64]*session),
		now:      time.Now,
	}
}

var _ command.Client = (*CommandImpl)(nil)
