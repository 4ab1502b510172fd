package draft

import (
	"path/filepath"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideStore(cfg config.Config) (Store, error) {
	if cfg.CaseStoreBackend == config.StoreBackendFile {
		return NewFileStore(filepath.Join(filepath.Dir(cfg.CaseFilePath), "drafts.json"))
	}
	return NewMemoryStore(), nil
}

func providePoller(cases casedomain.Service, clk clock.Clock, log *zap.Logger) *PaymentPoller {
	return NewPaymentPoller(cases.Get, clk, log)
}

var Module = fx.Module("draft",
	fx.Provide(provideStore, NewReconciler, providePoller),
)
