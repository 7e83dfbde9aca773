package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestFromContextRoundTrip(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	ctx := WithContext(context.Background(), logger.WithField("request_id", "abc"))

	FromContext(ctx).Info("hello")

	if len(hook.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hook.Entries))
	}
	if got := hook.LastEntry().Data["request_id"]; got != "abc" {
		t.Fatalf("request_id=%v", got)
	}
}

func TestFromContextWithoutEntry(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a usable entry")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != logrus.DebugLevel {
		t.Error("debug")
	}
	if ParseLevel("warning") != logrus.WarnLevel {
		t.Error("warn")
	}
	if ParseLevel("nonsense") != logrus.InfoLevel {
		t.Error("default")
	}
}
