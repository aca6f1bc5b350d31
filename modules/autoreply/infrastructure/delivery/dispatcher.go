package delivery

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Dispatcher hands a finalized outbound message to the transport.
// Delivery is fire-and-forget relative to the reply decision: failures
// are the dispatcher's to log, never retried by the engine.
type Dispatcher interface {
	Send(ctx context.Context, destination, text string) (deliveryID string, err error)
}

// LogDispatcher is the no-transport fallback used in development and
// tests: it records the outbound message and reports success.
type LogDispatcher struct {
	log *logrus.Logger
}

func NewLogDispatcher(log *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(_ context.Context, destination, text string) (string, error) {
	if d.log != nil {
		d.log.WithFields(logrus.Fields{
			"destination": destination,
			"text":        text,
		}).Info("outbound message dispatched")
	}
	return "log-" + destination, nil
}
