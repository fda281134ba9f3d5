package services

import (
	"encoding/json"
	"fmt"
	"log"

	"storefront/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

// Notification is an outbound email or SMS job carried on the notification
// queue.
type Notification struct {
	Type    string `json:"type"` // "email" or "sms"
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// EventPublisher is the slice of the RabbitMQ client the services need.
type EventPublisher interface {
	PublishJSON(queue string, payload interface{}) error
}

// Mailer sends an email. The concrete sender lives behind this interface so
// tests and the queue consumer share one code path.
type Mailer interface {
	SendMail(to, subject, body string) error
}

// SMSSender sends a text message.
type SMSSender interface {
	SendSMS(to, body string) error
}

// LogMailer writes mail to the process log instead of a provider. Used in
// development and tests.
type LogMailer struct{}

// SendMail logs the message.
func (LogMailer) SendMail(to, subject, body string) error {
	log.Printf("[mail] to=%s subject=%q body=%q", to, subject, body)
	return nil
}

// LogSMSSender writes SMS to the process log instead of a provider.
type LogSMSSender struct{}

// SendSMS logs the message.
func (LogSMSSender) SendSMS(to, body string) error {
	log.Printf("[sms] to=%s body=%q", to, body)
	return nil
}

// NotificationService queues outbound email/SMS so request handlers never
// wait on a provider. Without a broker it degrades to sending inline.
type NotificationService struct {
	publisher EventPublisher
	mailer    Mailer
	sms       SMSSender
}

// NewNotificationService creates a new NotificationService. publisher may be
// nil, in which case notifications are sent synchronously.
func NewNotificationService(publisher EventPublisher, mailer Mailer, sms SMSSender) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		mailer:    mailer,
		sms:       sms,
	}
}

// SendEmail queues an email notification.
func (s *NotificationService) SendEmail(to, subject, body string) error {
	return s.dispatch(Notification{Type: "email", To: to, Subject: subject, Body: body})
}

// SendSMS queues an SMS notification.
func (s *NotificationService) SendSMS(to, body string) error {
	return s.dispatch(Notification{Type: "sms", To: to, Body: body})
}

func (s *NotificationService) dispatch(n Notification) error {
	if s.publisher != nil {
		if err := s.publisher.PublishJSON(rabbitmq.NotificationQueue, n); err != nil {
			// The queue is best effort for the request path; fall through to
			// an inline send rather than failing the caller's operation.
			log.Printf("Warning: failed to queue %s notification for %s: %v", n.Type, n.To, err)
		} else {
			return nil
		}
	}
	return s.deliver(n)
}

// HandleDelivery is the notification-queue consumer. A send failure nacks
// the message back onto the queue.
func (s *NotificationService) HandleDelivery(msg amqp.Delivery) error {
	var n Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return s.deliver(n)
}

func (s *NotificationService) deliver(n Notification) error {
	switch n.Type {
	case "email":
		return s.mailer.SendMail(n.To, n.Subject, n.Body)
	case "sms":
		return s.sms.SendSMS(n.To, n.Body)
	default:
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
}
