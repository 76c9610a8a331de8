package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Start runs the scheduler once immediately and then on every tick of
// interval. It blocks until the context is cancelled.
func Start(ctx context.Context, s *Scheduler, interval time.Duration, clock func() time.Time) {
	run := func() {
		if _, err := s.Run(ctx, clock().UTC()); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("reminder run failed")
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
