// Package worker turns change events into notification emails.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/config"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
	"github.com/oksasatya/go-ddd-postboard/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-postboard/pkg/mailer/templates"
)

// RoutingKeys are the change events the notifier reacts to.
var RoutingKeys = []string{"users.created", "comments.created"}

const sendTimeout = 15 * time.Second

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ErrPermanent marks a message that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent failure")

type Notifier struct {
	Sender Sender
	Config *config.Config
	Logger *logrus.Logger
}

func NewNotifier(sender Sender, cfg *config.Config, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Notifier{Sender: sender, Config: cfg, Logger: logger}
}

// JobFor maps a change to an email. It reports false when the change needs no email.
func (n *Notifier) JobFor(ch event.Change) (*mailer.EmailJob, bool) {
	str := func(k string) string {
		if v, ok := ch.Data[k].(string); ok {
			return v
		}
		return ""
	}

	switch ch.RoutingKey() {
	case "users.created":
		email := str("email")
		if email == "" {
			return nil, false
		}
		return &mailer.EmailJob{
			To:       email,
			Template: mailtpl.Welcome,
			Data:     mailtpl.NewWelcomeData(n.Config, str("name"), email, mailtpl.WithTime(ch.At)),
		}, true
	case "comments.created":
		to := str("post_author_email")
		// no mail for comments on your own post
		if to == "" || str("post_author_id") == str("author_id") {
			return nil, false
		}
		return &mailer.EmailJob{
			To:       to,
			Template: mailtpl.NewComment,
			Data: mailtpl.NewCommentData(n.Config, str("post_author_name"), to,
				mailtpl.WithPost(str("post_title")),
				mailtpl.WithComment(str("author_name"), str("author_email"), str("content")),
				mailtpl.WithTime(ch.At),
			),
		}, true
	}
	return nil, false
}

// Handle processes one message body. Errors wrapping ErrPermanent must not be retried.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var ch event.Change
	if err := json.Unmarshal(body, &ch); err != nil {
		return fmt.Errorf("%w: decode change: %v", ErrPermanent, err)
	}
	job, ok := n.JobFor(ch)
	if !ok {
		return nil
	}
	helpers.EnsureRecipientAndEmail(job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
		}
		subject, text, html = strings.TrimSpace(s), t, h
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := n.Sender.Send(c, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.Template, job.To, err)
	}
	n.Logger.WithFields(logrus.Fields{"template": job.Template, "to": job.To, "change_id": ch.ID}).Info("notification sent")
	return nil
}

// Run consumes deliveries until the channel closes or ctx is done.
// Failed sends are requeued once; a redelivered message that fails again is dropped.
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			n.dispatch(ctx, msg)
		}
	}
}

func (n *Notifier) dispatch(ctx context.Context, msg amqp.Delivery) {
	err := n.Handle(ctx, msg.Body)
	if err == nil {
		_ = msg.Ack(false)
		return
	}
	log := n.Logger.WithError(err).WithFields(logrus.Fields{"routing_key": msg.RoutingKey, "redelivered": msg.Redelivered})
	if errors.Is(err, ErrPermanent) || msg.Redelivered {
		log.Error("notification dropped")
		_ = msg.Nack(false, false)
		return
	}
	log.Warn("notification failed, requeueing")
	_ = msg.Nack(false, true)
}

// Bind declares the durable queue, binds it to the events exchange and starts consuming.
func Bind(ch *amqp.Channel, exchange, queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := helpers.DeclareTopicExchange(ch, exchange); err != nil {
		return nil, fmt.Errorf("exchange declare: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	for _, key := range RoutingKeys {
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("queue bind %s: %w", key, err)
		}
	}
	return ch.Consume(queue, "", false, false, false, false, nil)
}
