// Package delivery implements C4: fanning a DeliveryJob out to every
// registered device/channel for its recipient, resolving per-tenant
// credentials and isolating per-device failures from each other and
// from the consumer's commit decision. Grounded on
// original_source/relay-delivery/src/service.rs's dispatch loop and
// src/worker_pool.go's fan-out idiom, served here by
// golang.org/x/sync/errgroup (already wired for top-level component
// supervision). The group has no limit set: each device and the email
// send get their own goroutine.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/eventlog"
	"github.com/mysocial/relay/internal/platformcfg"
	"github.com/mysocial/relay/internal/push/apns"
	"github.com/mysocial/relay/internal/push/email"
	"github.com/mysocial/relay/internal/push/fcm"
)

// Worker consumes "notifications.delivery" jobs and dispatches each
// to every device/channel available for the recipient.
type Worker struct {
	db       *db.DB
	resolver *platformcfg.Resolver
	log      zerolog.Logger
}

func NewWorker(database *db.DB, resolver *platformcfg.Resolver, log zerolog.Logger) *Worker {
	return &Worker{db: database, resolver: resolver, log: log}
}

type notificationPayload struct {
	ID               int64           `json:"id"`
	UserAddress      string          `json:"user_address"`
	NotificationType string          `json:"notification_type"`
	Title            string          `json:"title"`
	Body             string          `json:"body"`
	Data             json.RawMessage `json:"data"`
}

// HandleEvent decodes one DeliveryJob and fans it out. Per-device
// errors are logged and swallowed (§4.4: "a device delivery failure
// never fails the whole job"); only a decode, credential-resolution
// or device-token lookup failure is returned for redelivery.
func (w *Worker) HandleEvent(ctx context.Context, raw []byte) error {
	var job eventlog.DeliveryJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("decode delivery job: %w", err)
	}

	var n notificationPayload
	if err := json.Unmarshal(job.Notification, &n); err != nil {
		return fmt.Errorf("decode notification payload: %w", err)
	}

	creds, err := w.resolver.Resolve(ctx, job.PlatformID)
	if err != nil {
		return fmt.Errorf("resolve platform credentials: %w", err)
	}

	devices, err := w.db.ListDeviceTokens(ctx, job.UserAddress)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, device := range devices {
		device := device
		g.Go(func() error {
			w.dispatchDevice(gctx, device, creds, n)
			return nil
		})
	}
	g.Go(func() error {
		w.dispatchEmail(gctx, job.UserAddress, creds, n)
		return nil
	})
	return g.Wait()
}

// dispatchDevice routes a single device token to its platform's
// channel (§4.4: ios->APNs, android->FCM, anything else is skipped).
func (w *Worker) dispatchDevice(ctx context.Context, device db.DeviceToken, creds platformcfg.Resolved, n notificationPayload) {
	switch device.Platform {
	case "ios":
		w.dispatchAPNs(ctx, device, creds, n)
	case "android":
		w.dispatchFCM(ctx, device, creds, n)
	default:
		w.log.Warn().Str("platform", device.Platform).Msg("unsupported device platform, skipping")
	}
}

func (w *Worker) dispatchAPNs(ctx context.Context, device db.DeviceToken, creds platformcfg.Resolved, n notificationPayload) {
	if !creds.ApnsReady() {
		return
	}
	client, err := apns.New(apns.Credentials{
		BundleID: creds.ApnsBundleID,
		KeyID:    creds.ApnsKeyID,
		TeamID:   creds.ApnsTeamID,
		KeyPEM:   creds.ApnsKeyContent,
	})
	if err != nil {
		w.log.Error().Err(err).Str("user_address", n.UserAddress).Msg("build apns client failed")
		return
	}
	payload := apns.Payload{Alert: n.Body}
	if err := client.Send(ctx, device.DeviceToken, payload); err != nil {
		w.log.Error().Err(err).Str("user_address", n.UserAddress).Str("device_token", device.DeviceToken).Msg("apns delivery failed")
	}
}

func (w *Worker) dispatchFCM(ctx context.Context, device db.DeviceToken, creds platformcfg.Resolved, n notificationPayload) {
	if !creds.FCMReady() {
		return
	}
	client := fcm.New(creds.FCMServerKey)
	if err := client.Send(ctx, device.DeviceToken, n.Title, n.Body); err != nil {
		w.log.Error().Err(err).Str("user_address", n.UserAddress).Str("device_token", device.DeviceToken).Msg("fcm delivery failed")
	}
}

// dispatchEmail always attempts email delivery (§4.4: email is
// attempted "once per job regardless of registered devices"), sending
// to the recipient's wallet address as the addressee, matching
// relay-delivery/src/email.rs's `to: vec![user_address.to_string()]`.
func (w *Worker) dispatchEmail(ctx context.Context, userAddress string, creds platformcfg.Resolved, n notificationPayload) {
	if !creds.EmailReady() {
		return
	}
	client := email.New(creds.ResendAPIKey, creds.ResendFromEmail)
	if _, err := client.Send(ctx, userAddress, n.Title, n.Body); err != nil {
		w.log.Error().Err(err).Str("user_address", userAddress).Msg("email delivery failed")
	}
}
