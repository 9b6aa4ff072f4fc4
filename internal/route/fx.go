package route

import (
	"github.com/agencyops/kanri/internal/route/repository"
	"github.com/agencyops/kanri/internal/route/service"
	"go.uber.org/fx"
)

var Module = fx.Module("route.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
