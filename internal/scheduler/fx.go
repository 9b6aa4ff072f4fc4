package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

// NewScheduler runs the job loop for the lifetime of the application. The
// loop context outlives the OnStart context, so a fresh cancellable one is
// shared with OnStop, which waits for the loop to drain before returning.
func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sched.RunForever(loopCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
