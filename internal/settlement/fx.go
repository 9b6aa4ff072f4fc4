package settlement

import (
	"github.com/agencyops/kanri/internal/settlement/repository"
	"github.com/agencyops/kanri/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
