package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AMQPSender publishes rendered messages to a durable queue. A separate
// mailer process consumes the queue and talks SMTP.
type AMQPSender struct {
	url      string
	queue    string
	composer *Composer
	dial     func(url string) (*amqp.Connection, error)
}

func NewAMQPSender(url, queue string, composer *Composer) *AMQPSender {
	if queue == "" {
		queue = "email.verification"
	}
	return &AMQPSender{url: url, queue: queue, composer: composer, dial: amqp.Dial}
}

// SendVerificationEmail publishes one persistent message on the default
// exchange, routed by queue name.
func (s *AMQPSender) SendVerificationEmail(ctx context.Context, to, name, rawToken string) error {
	msg, err := s.composer.Verification(to, name, rawToken)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	conn, err := s.dial(s.url)
	if err != nil {
		logrus.WithError(err).Error("rabbitmq: dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Error("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		logrus.WithError(err).WithField("queue", s.queue).Error("rabbitmq: queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		logrus.WithError(err).WithField("queue", s.queue).Error("rabbitmq: publish failed")
		return fmt.Errorf("publish email: %w", err)
	}

	logrus.WithField("queue", s.queue).WithField("to", to).Info("verification email queued")
	return nil
}

var _ Sender = (*AMQPSender)(nil)
