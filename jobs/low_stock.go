package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/swarajb-778/StockPilot/services"
)

// LowStockScanner is the scan the job triggers.
type LowStockScanner interface {
	CheckLowStock(ctx context.Context, threshold int) (services.LowStockResult, error)
}

// StartLowStockJob runs one scan immediately and then every interval until ctx is
// cancelled. The returned channel closes once the loop has exited.
func StartLowStockJob(ctx context.Context, scanner LowStockScanner, interval time.Duration, threshold int) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runLowStockScan(ctx, scanner, threshold)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runLowStockScan(ctx, scanner, threshold)
			}
		}
	}()

	slog.Info("low stock job started", "interval", interval.String(), "threshold", threshold)
	return done
}

func runLowStockScan(ctx context.Context, scanner LowStockScanner, threshold int) {
	res, err := scanner.CheckLowStock(ctx, threshold)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("low stock scan failed", "error", err)
		}
		return
	}
	if res.Created > 0 || res.Failed > 0 {
		slog.Info("low stock scan finished", "created", res.Created, "failed", res.Failed)
	}
}
