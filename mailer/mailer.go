// Package mailer sends transactional email through Resend. Sends triggered
// by requests go through a Dispatcher so a slow or failing provider never
// holds up or fails the response.
package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"wanderlust/config"
)

type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.From,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email %q: %w", msg.Subject, err)
	}
	return nil
}

// sendTimeout bounds a background send; the request that queued it is gone by then.
const sendTimeout = 20 * time.Second

// Dispatcher sends in the background and logs failures instead of returning
// them.
type Dispatcher struct {
	sender Sender
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log}
}

// Go queues msg. ctx only contributes its values; cancellation of the
// request does not cancel the send.
func (d *Dispatcher) Go(ctx context.Context, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.log.Error().Err(err).Str("subject", msg.Subject).Strs("to", msg.To).Msg("email delivery failed")
			return
		}
		d.log.Debug().Str("subject", msg.Subject).Msg("email sent")
	}()
}

// Wait blocks until queued sends finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
