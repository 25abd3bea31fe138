package runtime

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/criticalinsight/sly/internal/bus"
)

// watchSignals forwards SIGINT/SIGTERM as SystemInterrupt impulses on the
// priority lane. The interrupt becomes a shutdown directive; in-flight
// handlers finish before the loop exits; nothing is force-cancelled.
func (r *Runtime) watchSignals(ctx context.Context) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				slog.Info("signal.received", "signal", sig.String())
				if err := r.Submit(ctx, bus.Impulse{Kind: bus.ImpulseSystemInterrupt}); err != nil {
					return
				}
			}
		}
	}()

	return func() { signal.Stop(ch); close(ch) }
}
