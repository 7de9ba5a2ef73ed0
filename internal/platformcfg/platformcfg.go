// Package platformcfg resolves the effective delivery credentials for
// a notification job: a per-tenant PlatformDeliveryConfig overriding a
// process-wide global default, field by field. Grounded on
// relay-core/src/platform_delivery_config.rs's
// "From<&PlatformDeliveryConfig> for DeliveryConfig" fallback
// conversion and §9's "per-tenant credential fallback" design note.
package platformcfg

import (
	"context"
	"fmt"

	"github.com/mysocial/relay/internal/db"
)

// Resolved is the two-layer-merged credential bundle the delivery
// worker consults to decide whether a channel is live for a given
// dispatch.
type Resolved struct {
	ApnsBundleID   string
	ApnsKeyID      string
	ApnsTeamID     string
	ApnsKeyContent string
	FCMServerKey   string
	ResendAPIKey   string
	ResendFromEmail string
}

// Global holds the process-wide default credentials loaded from
// config, used whenever a tenant override is absent or a field within
// it is empty.
type Global struct {
	ApnsBundleID    string
	ApnsKeyID       string
	ApnsTeamID      string
	ApnsKeyContent  string
	FCMServerKey    string
	ResendAPIKey    string
	ResendFromEmail string
}

// Resolver merges a tenant's override row onto the global defaults.
// It holds no cache: every Resolve call with a platform_id reads the
// tenant row from the database, and the delivery worker builds a new
// provider client for each dispatch.
type Resolver struct {
	db     *db.DB
	global Global
}

func NewResolver(database *db.DB, global Global) *Resolver {
	return &Resolver{db: database, global: global}
}

// Resolve implements §4.4's credential resolution: with a platformID,
// fetch the tenant override and merge field-by-field onto the global
// defaults; without one, use the defaults directly.
func (r *Resolver) Resolve(ctx context.Context, platformID string) (Resolved, error) {
	if platformID == "" {
		return r.globalResolved(), nil
	}

	tenant, err := r.db.GetPlatformDeliveryConfig(ctx, platformID)
	if err != nil {
		return Resolved{}, fmt.Errorf("load platform delivery config for %s: %w", platformID, err)
	}
	if tenant == nil {
		return r.globalResolved(), nil
	}

	merged := r.globalResolved()
	overlay(&merged.ApnsBundleID, tenant.ApnsBundleID)
	overlay(&merged.ApnsKeyID, tenant.ApnsKeyID)
	overlay(&merged.ApnsTeamID, tenant.ApnsTeamID)
	overlay(&merged.ApnsKeyContent, tenant.ApnsKeyContent)
	overlay(&merged.FCMServerKey, tenant.FCMServerKey)
	overlay(&merged.ResendAPIKey, tenant.ResendAPIKey)
	overlay(&merged.ResendFromEmail, tenant.ResendFromEmail)
	return merged, nil
}

func (r *Resolver) globalResolved() Resolved {
	return Resolved{
		ApnsBundleID:    r.global.ApnsBundleID,
		ApnsKeyID:       r.global.ApnsKeyID,
		ApnsTeamID:      r.global.ApnsTeamID,
		ApnsKeyContent:  r.global.ApnsKeyContent,
		FCMServerKey:    r.global.FCMServerKey,
		ResendAPIKey:    r.global.ResendAPIKey,
		ResendFromEmail: r.global.ResendFromEmail,
	}
}

func overlay(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

// ApnsReady reports whether enough credentials are present to dispatch
// via APNs: key id, team id, key material and the bundle id (sent as
// the apns-topic header) must all be set.
func (r Resolved) ApnsReady() bool {
	return r.ApnsKeyID != "" && r.ApnsTeamID != "" && r.ApnsKeyContent != "" && r.ApnsBundleID != ""
}

// FCMReady reports whether FCM has a server key configured.
func (r Resolved) FCMReady() bool {
	return r.FCMServerKey != ""
}

// EmailReady reports whether email has api key + from-address.
func (r Resolved) EmailReady() bool {
	return r.ResendAPIKey != "" && r.ResendFromEmail != ""
}
