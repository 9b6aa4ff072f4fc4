package opslog

import (
	"github.com/agencyops/kanri/internal/opslog/repository"
	"github.com/agencyops/kanri/internal/opslog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("opslog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
