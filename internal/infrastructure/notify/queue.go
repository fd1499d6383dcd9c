package notify

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	tpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

// Publisher is satisfied by *helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier enqueues verification emails for the email worker.
type QueueNotifier struct {
	Pub   Publisher
	Brand tpl.Brand
}

func NewQueueNotifier(pub Publisher, brand tpl.Brand) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Brand: brand}
}

func (n *QueueNotifier) SendVerification(ctx context.Context, msg repository.VerificationMessage) error {
	job := mailer.EmailJob{
		To:       msg.To,
		Template: tpl.VerifyEmail,
		Data:     tpl.NewVerifyEmailData(n.Brand, msg.Nickname, msg.To, msg.CertificationCode, msg.VerifyURL),
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue verify email: %w", err)
	}
	return nil
}

var _ repository.Notifier = (*QueueNotifier)(nil)
