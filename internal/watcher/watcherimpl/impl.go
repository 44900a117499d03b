package watcherimpl

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/repositories/delivery"
	"github.com/orgball2608/network-feed/internal/telegram"
	"github.com/orgball2608/network-feed/internal/watcher"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/logger"
	"github.com/orgball2608/network-feed/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Network      network.Client
	Telegram     telegram.Client
	DeliveryRepo delivery.Repository
	Logger       logger.Logger
	Config       *config.Config
}

type WatcherImpl struct {
	Network      network.Client
	Telegram     telegram.Client
	DeliveryRepo delivery.Repository
	Logger       logger.Logger
	Config       *config.Config

	retryCfg retry.Config

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

func New(opts Opts) *WatcherImpl {
	return &WatcherImpl{
		Network:      opts.Network,
		Telegram:     opts.Telegram,
		DeliveryRepo: opts.DeliveryRepo,
		Logger:       opts.Logger.WithComponent("Watcher"),
		Config:       opts.Config,
		retryCfg:     retry.DefaultConfig(),
	}
}

var _ watcher.Client = (*WatcherImpl)(nil)

func (w *WatcherImpl) location() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		w.Logger.Warn("Failed to load Asia/Ho_Chi_Minh timezone, using local timezone", "error", err)
		return time.Local
	}
	return loc
}
