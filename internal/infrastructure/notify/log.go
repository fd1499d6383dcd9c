package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// LogNotifier only logs; used when MAIL_SEND_ENABLED=false.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendVerification(_ context.Context, msg repository.VerificationMessage) error {
	n.Logger.WithFields(logrus.Fields{
		"user_id":    msg.UserID,
		"to":         msg.To,
		"verify_url": msg.VerifyURL,
	}).Info("verification email not sent (mail sending disabled)")
	return nil
}

var _ repository.Notifier = (*LogNotifier)(nil)
