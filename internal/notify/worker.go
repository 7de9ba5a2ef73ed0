package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/eventlog"
)

const deliveryTopic = "notifications.delivery"

// Worker implements C2's per-event pipeline: extract -> gate ->
// render -> persist -> count -> enqueue, grounded on
// NotificationService::process_event.
type Worker struct {
	db       *db.DB
	cache    *cache.Cache
	producer *eventlog.Producer
	log      zerolog.Logger
}

func NewWorker(database *db.DB, c *cache.Cache, producer *eventlog.Producer, log zerolog.Logger) *Worker {
	return &Worker{db: database, cache: c, producer: producer, log: log}
}

// HandleEvent processes one envelope. A returned error leaves the
// record uncommitted for redelivery (§4.2 failure semantics).
func (w *Worker) HandleEvent(ctx context.Context, env eventlog.Envelope) error {
	recipients, known := ExtractRecipients(env.EventType, env.EventData)
	if !known {
		w.log.Warn().Str("event_type", env.EventType).Msg("unknown event type for recipient extraction")
		return nil
	}

	for _, recipient := range recipients {
		if err := w.notifyOne(ctx, env, recipient); err != nil {
			return fmt.Errorf("notify %s for %s: %w", recipient, env.EventType, err)
		}
	}
	return nil
}

func (w *Worker) notifyOne(ctx context.Context, env eventlog.Envelope, recipient string) error {
	notify, err := w.checkPreference(ctx, recipient, env.EventType)
	if err != nil {
		return err
	}
	if !notify {
		return nil
	}

	title, body := FormatNotification(env.EventType, env.EventData)
	platformID := extractPlatformID(env.EventData)
	idempotencyKey := idempotencyKey(env, recipient)

	n := db.Notification{
		UserAddress:      recipient,
		NotificationType: env.EventType,
		Title:            title,
		Body:             body,
		Data:             env.EventData,
	}
	if idempotencyKey != "" {
		n.IdempotencyKey = &idempotencyKey
	}
	if platformID != "" {
		n.PlatformID = &platformID
	}

	id, err := w.db.InsertNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if err := w.cache.IncrUnread(ctx, recipient, platformID); err != nil {
		return fmt.Errorf("bump unread counters: %w", err)
	}

	return w.enqueueDelivery(ctx, id, recipient, n, platformID)
}

// checkPreference implements the preference gate (§4.2 step 2),
// honoring the spec's explicit correction of the original's stubbed
// should_notify (Open Question (a)): absent preferences default to
// "notify".
func (w *Worker) checkPreference(ctx context.Context, userAddress, eventType string) (bool, error) {
	prefs, err := w.db.GetPreferences(ctx, userAddress)
	if err != nil {
		return false, fmt.Errorf("load preferences: %w", err)
	}
	if prefs == nil {
		return true, nil
	}
	if !prefs.PushEnabled && !prefs.EmailEnabled && !prefs.SMSEnabled {
		return false, nil
	}
	if len(prefs.NotificationTypes) == 0 {
		return true, nil
	}
	var types map[string]bool
	if err := json.Unmarshal(prefs.NotificationTypes, &types); err != nil {
		return true, nil
	}
	if enabled, present := types[eventType]; present {
		return enabled, nil
	}
	return true, nil
}

func (w *Worker) enqueueDelivery(ctx context.Context, notificationID int64, recipient string, n db.Notification, platformID string) error {
	notificationJSON, err := json.Marshal(struct {
		ID               int64           `json:"id"`
		UserAddress      string          `json:"user_address"`
		NotificationType string          `json:"notification_type"`
		Title            string          `json:"title"`
		Body             string          `json:"body"`
		Data             json.RawMessage `json:"data"`
	}{notificationID, recipient, n.NotificationType, n.Title, n.Body, n.Data})
	if err != nil {
		return fmt.Errorf("marshal notification for delivery job: %w", err)
	}

	job := eventlog.DeliveryJob{
		UserAddress:  recipient,
		Notification: notificationJSON,
		PlatformID:   platformID,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delivery job: %w", err)
	}
	return w.producer.Produce(ctx, deliveryTopic, recipient, payload)
}

func extractPlatformID(eventData json.RawMessage) string {
	var data map[string]interface{}
	if err := json.Unmarshal(eventData, &data); err != nil {
		return ""
	}
	if v, ok := data["platform_id"].(string); ok {
		return v
	}
	return ""
}

// idempotencyKey derives sha256(event_id|recipient), falling back to
// transaction_id when event_id is absent (Open Question (b)).
func idempotencyKey(env eventlog.Envelope, recipient string) string {
	correlator := env.EventID
	if correlator == "" {
		correlator = env.TransactionID
	}
	if correlator == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(correlator + "|" + recipient))
	return hex.EncodeToString(sum[:])
}
