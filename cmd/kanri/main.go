package main

import (
	"github.com/agencyops/kanri/internal/clock"
	"github.com/agencyops/kanri/internal/config"
	"github.com/agencyops/kanri/internal/migration"
	"github.com/agencyops/kanri/internal/observability"
	"github.com/agencyops/kanri/internal/scheduler"
	"github.com/agencyops/kanri/internal/server"
	"github.com/agencyops/kanri/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)

	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
