package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/clock"
	"github.com/watchline/watchline/internal/config"
	"github.com/watchline/watchline/internal/migration"
	"github.com/watchline/watchline/internal/observability"
	"github.com/watchline/watchline/internal/server"
	"github.com/watchline/watchline/pkg/db"
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
