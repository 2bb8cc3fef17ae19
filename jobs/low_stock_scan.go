package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/lotuskitchen/lotuskitchen/internal/inventory"
)

// LowStockScanJob walks the inventory and logs every item at or below its
// minimum stock so the kitchen sees reorder candidates without opening the
// app.
type LowStockScanJob struct {
	Inventory *inventory.Service
	Logger    *slog.Logger
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(inv *inventory.Service, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Inventory: inv, Logger: logger}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	items, err := j.Inventory.LowStock(ctx)
	if err != nil {
		return err
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("low stock scan finished",
		slog.String("reason", payload.Reason),
		slog.Int("flagged", len(items)))
	for _, item := range items {
		logger.Warn("item below minimum stock",
			slog.String("item", item.Name),
			slog.Int64("quantity", item.Quantity),
			slog.Int64("minimum", item.MinimumStock))
	}
	return nil
}
