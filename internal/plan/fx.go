package plan

import (
	"github.com/agencyops/kanri/internal/plan/repository"
	"github.com/agencyops/kanri/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
