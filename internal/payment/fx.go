package payment

import (
	"github.com/vdmx/riskintel/internal/payment/adapters/stripe"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	"github.com/vdmx/riskintel/internal/payment/repository"
	"github.com/vdmx/riskintel/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(a *stripe.Adapter) paymentdomain.Gateway { return a }),
	fx.Provide(stripe.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
