package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/seed"
	"github.com/smallbiznis/advisorhub/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(newSnowflakeNode),
		server.Module,
		seed.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
