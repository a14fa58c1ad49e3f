package notify

import (
	"context"
	"waseet-api/internal/outbox"

	"github.com/sirupsen/logrus"
)

// LogDispatcher only records notifications, for environments without a mailer.
type LogDispatcher struct {
	log *logrus.Entry
}

func NewLogDispatcher(log *logrus.Entry) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, msg outbox.Message) error {
	d.log.WithFields(logrus.Fields{
		"id":       msg.Id,
		"type":     msg.Type,
		"attempts": msg.Attempts,
		"record":   string(payloadOrEmpty(msg.Payload)),
	}).Info("notification")

	return nil
}
