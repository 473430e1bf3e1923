package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes verification links to the log instead of delivering
// them. Used in development and tests.
type LogSender struct {
	composer *Composer
}

func NewLogSender(composer *Composer) *LogSender {
	return &LogSender{composer: composer}
}

func (s *LogSender) SendVerificationEmail(ctx context.Context, to, name, rawToken string) error {
	msg, err := s.composer.Verification(to, name, rawToken)
	if err != nil {
		return err
	}
	logrus.WithContext(ctx).WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"link":    msg.Link,
	}).Info("verification email")
	return nil
}

var _ Sender = (*LogSender)(nil)
