package alerts

import (
	"context"
	"time"
)

// RunSweeper ejecuta Sweep cada interval hasta que ctx se cancele.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n, err := e.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				e.log.Error().Err(err).Msg("barrido de alertas fallido")
				continue
			}
			e.log.Debug().Int("keys", n).Dur("took", time.Since(start)).Msg("barrido de alertas")
		}
	}
}
