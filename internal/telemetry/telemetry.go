// Package telemetry is the write-only observability sink for named events.
package telemetry

import (
	"github.com/sirupsen/logrus"
)

// Event names emitted during a cleanup run.
const (
	EventUserDeleted     = "User deleted"
	EventSearchCompleted = "Search completed"
)

// Events receives named events with string properties. Implementations must
// not fail the caller.
type Events interface {
	Track(name string, props map[string]string)
}

// LogEvents writes events as structured log lines.
type LogEvents struct {
	log logrus.FieldLogger
}

func NewLogEvents(log logrus.FieldLogger) *LogEvents {
	return &LogEvents{log: log}
}

func (e *LogEvents) Track(name string, props map[string]string) {
	fields := logrus.Fields{"event": name}
	for k, v := range props {
		fields[k] = v
	}
	e.log.WithFields(fields).Info(name)
}
