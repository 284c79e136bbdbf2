package billing

import (
	"github.com/watchline/watchline/internal/billing/repository"
	"github.com/watchline/watchline/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
