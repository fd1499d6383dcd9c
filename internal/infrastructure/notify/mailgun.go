package notify

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	tpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

// Sender is satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// MailgunNotifier renders and sends the verification email inline.
type MailgunNotifier struct {
	Sender Sender
	Brand  tpl.Brand
}

func NewMailgunNotifier(s Sender, brand tpl.Brand) *MailgunNotifier {
	return &MailgunNotifier{Sender: s, Brand: brand}
}

func (n *MailgunNotifier) SendVerification(ctx context.Context, msg repository.VerificationMessage) error {
	data := tpl.NewVerifyEmailData(n.Brand, msg.Nickname, msg.To, msg.CertificationCode, msg.VerifyURL)
	subject, text, html, err := tpl.Render(tpl.VerifyEmail, data)
	if err != nil {
		return fmt.Errorf("render verify email: %w", err)
	}
	if err := n.Sender.Send(ctx, msg.To, subject, text, html); err != nil {
		return fmt.Errorf("send verify email: %w", err)
	}
	return nil
}

var _ repository.Notifier = (*MailgunNotifier)(nil)
