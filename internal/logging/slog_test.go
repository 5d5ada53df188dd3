package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := textLogger(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "pulled", "dreams", 3)
	log.Info(ctx, "synced", "dreams", 2)
	log.Warn(ctx, "skipped", "doc", "d1")
	log.Error(ctx, "failed", "user", "u1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	for i, want := range []string{
		"level=DEBUG msg=pulled dreams=3",
		"level=INFO msg=synced dreams=2",
		"level=WARN msg=skipped doc=d1",
		"level=ERROR msg=failed user=u1",
	} {
		assert.Contains(t, lines[i], want)
	}
}

func TestSlogLogger_WithAndContextFields(t *testing.T) {
	log, buf := textLogger(slog.LevelInfo)

	ctx := ContextWith(context.Background(), "user_id", "alice")
	ctx = ContextWith(ctx, "method", "UpsertDream")
	log.With("module", "dreams").Info(ctx, "dream stored", "doc", "d1")

	assert.Contains(t, buf.String(), "module=dreams user_id=alice method=UpsertDream doc=d1")
}

func TestContextWith_DoesNotShareBacking(t *testing.T) {
	base := ContextWith(context.Background(), "a", 1)
	left := ContextWith(base, "b", 2)
	right := ContextWith(base, "c", 3)

	assert.Equal(t, []any{"a", 1}, fieldsFrom(base))
	assert.Equal(t, []any{"a", 1, "b", 2}, fieldsFrom(left))
	assert.Equal(t, []any{"a", 1, "c", 3}, fieldsFrom(right))
	assert.Nil(t, fieldsFrom(context.Background()))
}

func TestSlogLogger_FilteredLevelSkipsWork(t *testing.T) {
	log, buf := textLogger(slog.LevelWarn)
	ctx := ContextWith(context.Background(), "user_id", "alice")

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "user_id=alice")
}

func TestNew_SlogFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Backend: "slog", Format: "json", Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)

	_, err = New(Options{Backend: "logrus"}, &buf)
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error(context.Background(), "discarded")
	log.With("k", "v").Info(nil, "nil context is tolerated")
}
