// Package notify sends transactional email: access codes, booking
// confirmations, and modification request receipts. Delivery goes through a
// primary HTTP email provider with a fallback provider tried on failure.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDeliveryFailed is returned when every configured provider rejected the
// message.
var ErrDeliveryFailed = errors.New("email delivery failed on all providers")

// Message types understood by the email providers.
const (
	TypeAccessCode           = "access_code"
	TypeCustomerConfirmation = "customer_confirmation"
	TypeManagerNotification  = "manager_notification"
)

// Message is one outbound email. Type selects the provider-side template;
// subject and body are the composed fallback for providers without one.
type Message struct {
	MessageID string `json:"message_id"`
	Type      string `json:"type"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Sender delivers email through one or more HTTP providers in order.
type Sender struct {
	providers []string
	apiKey    string
	client    *http.Client
	log       *logrus.Logger
}

// NewSender creates a sender. Empty provider URLs are skipped, so a
// deployment with no email configuration gets a sender that drops mail with
// a log line instead of failing requests.
func NewSender(primaryURL, fallbackURL, apiKey string, logger *logrus.Logger) *Sender {
	var providers []string
	for _, u := range []string{primaryURL, fallbackURL} {
		if u != "" {
			providers = append(providers, u)
		}
	}
	return &Sender{
		providers: providers,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       logger,
	}
}

// Send delivers a message, trying each provider in order: the fallback runs
// only after the primary fails, never both. Every message gets a unique id
// so provider-side duplicates can be traced.
func (s *Sender) Send(ctx context.Context, msg Message) (string, error) {
	msg.MessageID = uuid.NewString()

	if len(s.providers) == 0 {
		s.log.WithFields(logrus.Fields{
			"message_id": msg.MessageID,
			"type":       msg.Type,
		}).Info("Email not configured, dropping message")
		return msg.MessageID, nil
	}

	for i, providerURL := range s.providers {
		err := s.deliver(ctx, providerURL, msg)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"message_id": msg.MessageID,
				"provider":   i,
			}).Info("Email delivered")
			return msg.MessageID, nil
		}
		s.log.WithFields(logrus.Fields{
			"message_id": msg.MessageID,
			"provider":   i,
			"error":      err.Error(),
		}).Warn("Email provider failed")
	}

	return msg.MessageID, ErrDeliveryFailed
}

func (s *Sender) deliver(ctx context.Context, providerURL string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, providerURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAccessCode emails a fresh portal access code to a customer.
func (s *Sender) SendAccessCode(ctx context.Context, to, code string, expiresAt time.Time) (string, error) {
	body := fmt.Sprintf(
		"Your access code is %s.\n\nIt expires at %s and can be used once.",
		code, expiresAt.Format(time.RFC1123))
	return s.Send(ctx, Message{
		Type:    TypeAccessCode,
		To:      to,
		Subject: "Your portal access code",
		Body:    body,
	})
}

// SendBookingConfirmation emails a booking reference after a portal booking.
func (s *Sender) SendBookingConfirmation(ctx context.Context, to, bookingRef string, pickupTime time.Time) (string, error) {
	body := fmt.Sprintf(
		"Your booking %s is confirmed for %s.",
		bookingRef, pickupTime.Format(time.RFC1123))
	return s.Send(ctx, Message{
		Type:    TypeCustomerConfirmation,
		To:      to,
		Subject: "Booking confirmed",
		Body:    body,
	})
}

// SendBookingNotification emails a company's dispatch contact about a new
// booking.
func (s *Sender) SendBookingNotification(ctx context.Context, to, customerName, bookingRef, pickupLocation, dropoffLocation string, pickupTime time.Time) (string, error) {
	body := fmt.Sprintf(
		"%s booked %s to %s for %s.",
		customerName, pickupLocation, dropoffLocation, pickupTime.Format(time.RFC1123))
	return s.Send(ctx, Message{
		Type:    TypeManagerNotification,
		To:      to,
		Subject: fmt.Sprintf("New booking %s", bookingRef),
		Body:    body,
	})
}
