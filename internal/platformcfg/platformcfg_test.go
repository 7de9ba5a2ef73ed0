package platformcfg

import "testing"

func strPtr(s string) *string { return &s }

func TestResolvedReadinessPredicates(t *testing.T) {
	cases := []struct {
		name      string
		resolved  Resolved
		apnsReady bool
		fcmReady  bool
		emailReady bool
	}{
		{
			name:     "nothing configured",
			resolved: Resolved{},
		},
		{
			name: "apns fully configured",
			resolved: Resolved{
				ApnsBundleID: "com.example.app", ApnsKeyID: "key1", ApnsTeamID: "team1", ApnsKeyContent: "pem",
			},
			apnsReady: true,
		},
		{
			name:      "apns missing bundle id",
			resolved:  Resolved{ApnsKeyID: "key1", ApnsTeamID: "team1", ApnsKeyContent: "pem"},
			apnsReady: false,
		},
		{
			name:     "fcm configured",
			resolved: Resolved{FCMServerKey: "server-key"},
			fcmReady: true,
		},
		{
			name:       "email configured",
			resolved:   Resolved{ResendAPIKey: "key", ResendFromEmail: "relay@example.com"},
			emailReady: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resolved.ApnsReady(); got != tc.apnsReady {
				t.Errorf("ApnsReady() = %v, want %v", got, tc.apnsReady)
			}
			if got := tc.resolved.FCMReady(); got != tc.fcmReady {
				t.Errorf("FCMReady() = %v, want %v", got, tc.fcmReady)
			}
			if got := tc.resolved.EmailReady(); got != tc.emailReady {
				t.Errorf("EmailReady() = %v, want %v", got, tc.emailReady)
			}
		})
	}
}

func TestOverlayOnlyAppliesNonEmptyFields(t *testing.T) {
	dst := "global-default"
	overlay(&dst, strPtr(""))
	if dst != "global-default" {
		t.Errorf("overlay with empty src should not change dst, got %q", dst)
	}
	overlay(&dst, strPtr("tenant-value"))
	if dst != "tenant-value" {
		t.Errorf("overlay with non-empty src should replace dst, got %q", dst)
	}
	overlay(&dst, nil)
	if dst != "tenant-value" {
		t.Errorf("overlay with nil src should not change dst, got %q", dst)
	}
}
