package ticket

import (
	"github.com/vdmx/riskintel/internal/ticket/repository"
	"github.com/vdmx/riskintel/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
