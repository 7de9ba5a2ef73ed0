// Package notify implements C2: turning a domain event into zero or
// more persisted, counted, delivery-enqueued notifications. Grounded
// on original_source/relay-notify/src/service.rs's staged design,
// translated from serde_json::Value field lookups into Go's
// encoding/json generic decode.
package notify

import "encoding/json"

// RecipientExtractor derives the recipient address(es) for one event.
// It must never panic on a missing/malformed field — it returns an
// empty slice instead (§9 Design Notes).
type RecipientExtractor func(data map[string]interface{}) []string

func fieldString(data map[string]interface{}, field string) (string, bool) {
	v, ok := data[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func single(field string) RecipientExtractor {
	return func(data map[string]interface{}) []string {
		if v, ok := fieldString(data, field); ok {
			return []string{v}
		}
		return nil
	}
}

func none(map[string]interface{}) []string { return nil }

// extractors is the fixed recipient-field table from §4.2 step 1.
var extractors = map[string]RecipientExtractor{
	"reaction.created": single("post_owner"),
	"comment.created":  single("post_owner"),
	"repost.created":   single("post_owner"),

	"tip.created":         single("recipient"),
	"prediction.payout":   single("recipient"),
	"ownership.transferred": single("new_owner"),

	"follow.created":   single("following_address"),
	"unfollow.created": single("following_address"),

	"spt.token_bought":         single("pool_owner"),
	"spt.token_sold":           single("pool_owner"),
	"spt.tokens_added":         single("pool_owner"),
	"spt.reservation_created":  single("associated_owner"),

	"governance.proposal_approved":             single("submitter"),
	"governance.proposal_rejected":             single("submitter"),
	"governance.proposal_rejected_by_community": single("submitter"),
	"governance.proposal_implemented":          single("submitter"),

	"prediction.bet_placed": single("post_owner"),
	"prediction.resolved":   single("post_owner"),

	"platform.moderator_added":   single("moderator_address"),
	"platform.moderator_removed": single("moderator_address"),

	"message.created": single("recipient_address"),

	"post.created":                   none,
	"governance.proposal_submitted":  none,
	"platform.user_joined":           none,
	"platform.user_left":             none,
}

// ExtractRecipients applies the table. For event types outside the
// fixed mapping it returns an empty list and known=false, which the
// caller logs as a warning.
func ExtractRecipients(eventType string, eventData json.RawMessage) (recipients []string, known bool) {
	extractor, known := extractors[eventType]
	if !known {
		return nil, false
	}
	var data map[string]interface{}
	if err := json.Unmarshal(eventData, &data); err != nil {
		return nil, true
	}
	return extractor(data), true
}
