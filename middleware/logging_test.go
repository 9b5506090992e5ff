package middleware

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dalmesh/core"
)

// captureLogger records log messages by level.
type captureLogger struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{entries: map[string][]string{}}
}

func (l *captureLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[level] = append(l.entries[level], msg)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.record("error", msg) }

func TestLoggingInterceptorSuccess(t *testing.T) {
	logger := newCaptureLogger()
	l := NewLogging(logger)

	result, err := l.Intercept(newTestRequest("users", "get"), func(req *core.Request) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Len(t, logger.entries["debug"], 2)
	assert.Empty(t, logger.entries["error"])
}

func TestLoggingInterceptorFailurePassesErrorThrough(t *testing.T) {
	logger := newCaptureLogger()
	l := NewLogging(logger)
	boom := errors.New("downstream failure")

	_, err := l.Intercept(newTestRequest("users", "get"), func(req *core.Request) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, logger.entries["error"], 1)
}

func TestNewLoggingToleratesNilLogger(t *testing.T) {
	l := NewLogging(nil)
	result, err := l.Intercept(newTestRequest("users"), func(req *core.Request) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}
