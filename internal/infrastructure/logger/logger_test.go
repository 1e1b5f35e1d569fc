package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/todo/internal/infrastructure/config"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestNew(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, l)

	child := l.WithComponent("tasks")
	assert.NotSame(t, l, child)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestContextFields(t *testing.T) {
	l, logs := newObserved()

	l.WithRequestID("req-1").WithUserID("u1").WithError(errors.New("boom")).Errorw("List tasks failed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "boom", fields["error"])
}

func TestEmptyContextIsSkipped(t *testing.T) {
	l, logs := newObserved()

	assert.Same(t, l, l.WithError(nil))
	assert.Same(t, l, l.WithRequestID(""))

	l.LogSecurityEvent("invalid_token", "", "10.0.0.1", map[string]interface{}{"endpoint": "/api/tasks"})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "invalid_token", fields["security_event"])
	assert.Equal(t, "/api/tasks", fields["endpoint"])
	assert.NotContains(t, fields, "user_id")
}
