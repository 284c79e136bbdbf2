package reference

import (
	"github.com/watchline/watchline/internal/reference/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("reference.repository",
	fx.Provide(repository.Provide),
)
