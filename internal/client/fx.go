package client

import (
	"github.com/watchline/watchline/internal/client/repository"
	"github.com/watchline/watchline/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
