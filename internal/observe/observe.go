// Package observe is the observability sink for the synchronization layer:
// every failed store call is reported here as an (operation, error) pair.
// Mutations are fire-and-forget from the caller's perspective, so this sink
// is the only place those failures surface — swallowing them entirely was a
// known weakness of the source system.
package observe

import (
	"go.uber.org/zap"
)

// Sink receives failed-operation reports. The zero value is unusable; build
// one with NewSink or NewNopSink.
type Sink struct {
	log *zap.Logger
}

// NewSink wraps a zap logger.
func NewSink(log *zap.Logger) *Sink {
	return &Sink{log: log}
}

// NewNopSink discards all reports (tests that don't assert on them).
func NewNopSink() *Sink {
	return &Sink{log: zap.NewNop()}
}

// Report records one failed store operation. Safe on a nil sink.
func (s *Sink) Report(operation string, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}
	s.log.Warn("store operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
}
