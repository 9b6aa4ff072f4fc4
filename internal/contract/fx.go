package contract

import (
	"github.com/agencyops/kanri/internal/contract/repository"
	"github.com/agencyops/kanri/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
