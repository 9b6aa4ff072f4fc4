package account

import (
	"github.com/agencyops/kanri/internal/account/repository"
	"github.com/agencyops/kanri/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
