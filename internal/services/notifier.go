package services

import (
	"context"
	"fmt"

	"shared-house-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Notifier delivers push notifications to a user's device. Delivery is
// fire-and-forget: callers log failures but never propagate them.
type Notifier interface {
	Send(ctx context.Context, user *models.User, event string, data map[string]string) error
}

// Reminder messages pushed by the exit-reminder scan.
const (
	ExitReminderMessage        = "Your stay ends today. Please complete the exit checklist before leaving."
	AdvanceExitReminderMessage = "Your stay ends tomorrow. Remember to complete the exit checklist."
)

var eventTitles = map[string]string{
	"booking_confirmed":     "Booking confirmed",
	"exit_reminder":         "Exit checklist reminder",
	"maintenance_created":   "New maintenance request",
	"maintenance_completed": "Maintenance completed",
}

// APNSNotifier sends notifications through Apple Push Notification service.
type APNSNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNSNotifier creates a notifier from a .p12 certificate file.
func NewAPNSNotifier(certPath, certPassword, topic string, production bool) (*APNSNotifier, error) {
	cert, err := certificate.FromP12File(certPath, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSNotifier{client: client, topic: topic}, nil
}

// Send pushes a notification to the user's registered device. Users
// without a push token are skipped silently.
func (n *APNSNotifier) Send(ctx context.Context, user *models.User, event string, data map[string]string) error {
	if user.PushToken == nil || *user.PushToken == "" {
		log.Debug().Str("user_id", user.ID).Str("event", event).Msg("User has no push token, skipping")
		return nil
	}

	title := eventTitles[event]
	if title == "" {
		title = event
	}

	p := payload.NewPayload().AlertTitle(title).Custom("event", event)
	if body, ok := data["message"]; ok {
		p = p.AlertBody(body)
	}
	for key, value := range data {
		if key == "message" {
			continue
		}
		p = p.Custom(key, value)
	}

	notification := &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       n.topic,
		Payload:     p,
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("event", event).Msg("Failed to send push notification")
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	if !res.Sent() {
		log.Warn().
			Str("user_id", user.ID).
			Str("event", event).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
		return fmt.Errorf("push notification rejected: %s", res.Reason)
	}

	return nil
}

// NopNotifier drops all notifications. Used when push is disabled and in
// tests.
type NopNotifier struct{}

// Send implements Notifier.
func (NopNotifier) Send(context.Context, *models.User, string, map[string]string) error {
	return nil
}
