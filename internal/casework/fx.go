package casework

import (
	"github.com/vdmx/riskintel/internal/casework/repository"
	"github.com/vdmx/riskintel/internal/casework/service"
	"go.uber.org/fx"
)

var Module = fx.Module("casework.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
