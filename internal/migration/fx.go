package migration

import (
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/config"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		// sqlite is the zero-config path; AutoMigrate keeps it in step
		// without a second migration track.
		return conn.AutoMigrate(
			&casedomain.Case{},
			&ticketdomain.Ticket{},
			&paymentdomain.EventRecord{},
		)
	}),
)
