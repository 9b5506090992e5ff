package middleware

import (
	"time"

	"github.com/hupe1980/dalmesh/core"
	"github.com/hupe1980/dalmesh/logging"
)

// Logging is a ready-made interceptor that records every dispatch: path and
// request id on entry, duration and outcome on exit. Errors pass through
// unchanged.
type Logging struct {
	logger logging.Logger
}

// NewLogging creates a Logging interceptor. A nil logger is replaced with a
// no-op one.
func NewLogging(logger logging.Logger) *Logging {
	return &Logging{logger: logging.OrNoOp(logger)}
}

// Intercept implements Interceptor.
func (l *Logging) Intercept(req *core.Request, next Handler) (any, error) {
	start := time.Now()
	l.logger.Debug("dispatching call", "request_id", req.ID, "path", req.PathString())

	result, err := next(req)
	if err != nil {
		l.logger.Error("dispatch failed",
			"request_id", req.ID,
			"path", req.PathString(),
			"duration", time.Since(start),
			"error", err,
		)
		return nil, err
	}

	l.logger.Debug("dispatch completed",
		"request_id", req.ID,
		"path", req.PathString(),
		"duration", time.Since(start),
	)
	return result, nil
}
