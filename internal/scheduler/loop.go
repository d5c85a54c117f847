package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

// runEvery calls fn on every tick and manual trigger until stopCh is closed
// or ctx is done. A nil trigger channel never fires.
func runEvery(
	ctx context.Context,
	interval time.Duration,
	manualTrigger <-chan struct{},
	stopCh <-chan struct{},
	log logger.Logger,
	name string,
	fn func(context.Context) error,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					log.Error("failed to reload "+name, logger.Error(err))
				}
			case <-manualTrigger:
				log.Info("manual " + name + " reload triggered")
				if err := fn(ctx); err != nil {
					log.Error("failed to reload "+name, logger.Error(err))
				}
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
