package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"

	"github.com/criticalinsight/sly/internal/bus"
)

// runMaintenanceTrigger fires a JanitorWakeup impulse on the background
// lane whenever the configured cron expression comes due, checked once a
// minute. An invalid expression disables the trigger rather than failing
// the runtime.
func (r *Runtime) runMaintenanceTrigger(ctx context.Context, schedule string) {
	gron := gronx.New()
	if !gron.IsValid(schedule) {
		slog.Warn("cron.invalid_schedule", "schedule", schedule)
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := gron.IsDue(schedule, time.Now())
			if err != nil || !due {
				continue
			}
			if err := r.Submit(ctx, bus.Impulse{Kind: bus.ImpulseJanitorWakeup}); err != nil {
				return
			}
		}
	}
}
