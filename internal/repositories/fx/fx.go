package fx

import (
	"github.com/orgball2608/network-feed/internal/repositories/delivery"
	"go.uber.org/fx"
)

var Module = fx.Options(
	delivery.Module,
)
