package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vdmx/riskintel/internal/casework"
	"github.com/vdmx/riskintel/internal/catalog"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/config"
	"github.com/vdmx/riskintel/internal/draft"
	"github.com/vdmx/riskintel/internal/migration"
	"github.com/vdmx/riskintel/internal/observability"
	"github.com/vdmx/riskintel/internal/payment"
	"github.com/vdmx/riskintel/internal/ratelimit"
	"github.com/vdmx/riskintel/internal/server"
	"github.com/vdmx/riskintel/internal/ticket"
	"github.com/vdmx/riskintel/internal/upload"
	"github.com/vdmx/riskintel/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Intake domain
		catalog.Module,
		upload.Module,
		casework.Module,
		payment.Module,
		ticket.Module,
		draft.Module,
		ratelimit.Module,

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
