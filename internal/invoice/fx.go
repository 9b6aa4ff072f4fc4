package invoice

import (
	"github.com/agencyops/kanri/internal/invoice/repository"
	"github.com/agencyops/kanri/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
