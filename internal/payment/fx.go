package payment

import (
	"github.com/agencyops/kanri/internal/payment/repository"
	"github.com/agencyops/kanri/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
