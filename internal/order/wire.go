package order

import (
	"database/sql"

	"go.uber.org/zap"

	"printshop/internal/config"
	"printshop/internal/order/controller"
	"printshop/internal/order/repository"
	"printshop/internal/order/service"
	"printshop/internal/order/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	repo := repository.NewMySQLOrderRepository(db, cfg.Import.DeadlineDays)

	reconciler := service.NewSpreadsheetReconciler(service.ImportPolicy{
		TypeKeywords: cfg.Import.TypeKeywords,
		FallbackType: cfg.Import.FallbackType,
		DefaultColor: cfg.Import.DefaultColor,
	})

	uc := usecase.NewOrderUseCase(repo, reconciler, logger)

	return controller.NewOrderController(uc, logger)
}
