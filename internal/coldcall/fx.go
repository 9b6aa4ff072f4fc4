package coldcall

import (
	"github.com/agencyops/kanri/internal/coldcall/repository"
	"github.com/agencyops/kanri/internal/coldcall/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coldcall.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
