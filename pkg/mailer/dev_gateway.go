package mailer

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DevGateway logs messages instead of sending them. Used in development
// mode so registration and password-reset flows work without a mail
// provider account.
type DevGateway struct {
	logger  *logrus.Logger
	counter int64
}

// NewDevGateway creates a logging-only mail gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// Send logs the message and returns a synthetic message ID
func (g *DevGateway) Send(to, subject, body string) (string, error) {
	id := atomic.AddInt64(&g.counter, 1)
	g.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    body,
	}).Info("Dev mailer: message not sent")
	return fmt.Sprintf("dev-%d", id), nil
}

// GetName returns the gateway name
func (g *DevGateway) GetName() string {
	return "dev"
}
