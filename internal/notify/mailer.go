// Package notify delivers voucher documents by email.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/textproto"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/config"
	"github.com/Cheertaboi/gift-voucher-service/internal/models"
	"github.com/Cheertaboi/gift-voucher-service/internal/retry"
)

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	client sender
	from   string
	logger *zap.Logger
}

func NewMailer(cfg *config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From, logger: logger}, nil
}

// Send makes one delivery attempt. Address problems and permanent SMTP
// rejections are marked retry.Permanent; everything else may be retried.
func (m *Mailer) Send(ctx context.Context, n models.Notification) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return retry.Permanent(fmt.Errorf("invalid sender %q: %w", m.from, err))
	}
	if err := msg.To(n.Recipient); err != nil {
		return retry.Permanent(fmt.Errorf("invalid recipient %q: %w", n.Recipient, err))
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	if len(n.Attachment) > 0 {
		if err := msg.AttachReader(n.AttachmentName, bytes.NewReader(n.Attachment)); err != nil {
			return retry.Permanent(fmt.Errorf("attach document: %w", err))
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		if err = classify(err); err != nil {
			m.logger.Warn("smtp send failed", zap.String("recipient", n.Recipient), zap.Error(err))
			return err
		}
		m.logger.Warn("smtp reset failed after delivery", zap.String("recipient", n.Recipient))
	}
	return nil
}

// classify decides whether a failed send may be retried. Only problems
// with the message itself and 5xx replies to MAIL FROM or RCPT TO are
// permanent. A failed RSET happens after the message was accepted, so it
// counts as delivered.
func classify(err error) error {
	var sendErr *mail.SendError
	if !errors.As(err, &sendErr) {
		return err
	}
	switch sendErr.Reason {
	case mail.ErrSMTPReset:
		return nil
	case mail.ErrGetSender, mail.ErrGetRcpts, mail.ErrNoUnencoded:
		return retry.Permanent(err)
	case mail.ErrSMTPMailFrom, mail.ErrSMTPRcptTo:
		var reply *textproto.Error
		if errors.As(err, &reply) && reply.Code >= 500 && reply.Code < 600 {
			return retry.Permanent(err)
		}
	}
	return err
}
