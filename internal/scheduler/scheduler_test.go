package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestEveryRunsUntilCancelled(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())

	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Every(ctx, logger, 5*time.Millisecond, "ping", func(context.Context) error {
			if n.Add(1) == 2 {
				return errors.New("boom")
			}
			return nil
		})
	}()

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Every did not return after cancel")
	}

	assert.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "ping", hook.AllEntries()[0].Data["task"])
}
