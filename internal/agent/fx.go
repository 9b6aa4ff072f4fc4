package agent

import (
	"github.com/agencyops/kanri/internal/agent/repository"
	"github.com/agencyops/kanri/internal/agent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("agent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
