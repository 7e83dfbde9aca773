package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done.
// Errors are logged and never stop the loop.
func Every(ctx context.Context, log logrus.FieldLogger, interval time.Duration, name string, task Task) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("task", name)
	run := func() {
		if err := task(ctx); err != nil {
			entry.WithError(err).Warn("scheduled task failed")
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
