package notify

import (
	"encoding/json"
	"fmt"
)

// Formatter renders (title, body) from an event's data. Formatters
// never fail — missing fields render as "Someone" / 0 (§4.2's
// formatter contract).
type Formatter func(data map[string]interface{}) (title, body string)

func str(data map[string]interface{}, field, fallback string) string {
	if v, ok := data[field]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// num reads a numeric field as rendered by encoding/json (float64),
// defaulting to 0.
func num(data map[string]interface{}, field string) float64 {
	if v, ok := data[field]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

var formatters = map[string]Formatter{
	"reaction.created": func(d map[string]interface{}) (string, string) {
		return "New Reaction", fmt.Sprintf("Someone %s to your post", str(d, "reaction", "reacted"))
	},
	"repost.created": func(d map[string]interface{}) (string, string) {
		return "New Repost", fmt.Sprintf("%s reposted your post", str(d, "reposter", "Someone"))
	},
	"tip.created": func(d map[string]interface{}) (string, string) {
		return "New Tip", fmt.Sprintf("%s tipped you %g MYSO", str(d, "tipper", "Someone"), num(d, "amount"))
	},
	"post.created": func(d map[string]interface{}) (string, string) {
		return "Post Created", "Your post was created"
	},
	"ownership.transferred": func(d map[string]interface{}) (string, string) {
		return "Ownership Transferred", "You are now the owner of this post"
	},
	"comment.created": func(d map[string]interface{}) (string, string) {
		return "New Comment", fmt.Sprintf("%s commented on your post", str(d, "commenter", "Someone"))
	},
	"follow.created": func(d map[string]interface{}) (string, string) {
		return "New Follower", "Someone started following you"
	},
	"unfollow.created": func(d map[string]interface{}) (string, string) {
		return "User Unfollowed", "Someone unfollowed you"
	},
	"spt.token_bought": func(d map[string]interface{}) (string, string) {
		return "Token Bought", fmt.Sprintf("%s bought %g tokens from your pool", str(d, "buyer", "Someone"), num(d, "amount"))
	},
	"spt.token_sold": func(d map[string]interface{}) (string, string) {
		return "Token Sold", fmt.Sprintf("%s sold %g tokens from your pool", str(d, "seller", "Someone"), num(d, "amount"))
	},
	"spt.tokens_added": func(d map[string]interface{}) (string, string) {
		return "Tokens Added", fmt.Sprintf("%g tokens were added to your pool", num(d, "amount"))
	},
	"spt.reservation_created": func(d map[string]interface{}) (string, string) {
		return "New Reservation", fmt.Sprintf("%s reserved %g tokens", str(d, "reserver", "Someone"), num(d, "amount"))
	},
	"governance.proposal_submitted": func(d map[string]interface{}) (string, string) {
		return "New Proposal", "A new governance proposal was submitted"
	},
	"governance.proposal_approved": func(d map[string]interface{}) (string, string) {
		return "Proposal Approved", "Your governance proposal was approved"
	},
	"governance.proposal_rejected": func(d map[string]interface{}) (string, string) {
		return "Proposal Rejected", "Your governance proposal was rejected"
	},
	"governance.proposal_rejected_by_community": func(d map[string]interface{}) (string, string) {
		return "Proposal Rejected", "Your governance proposal was rejected by the community"
	},
	"governance.proposal_implemented": func(d map[string]interface{}) (string, string) {
		return "Proposal Implemented", "Your governance proposal was implemented"
	},
	"prediction.bet_placed": func(d map[string]interface{}) (string, string) {
		return "New Bet", fmt.Sprintf("%s placed a bet of %g MYSO on your prediction", str(d, "bettor", "Someone"), num(d, "amount"))
	},
	"prediction.resolved": func(d map[string]interface{}) (string, string) {
		return "Prediction Resolved", "Your prediction has been resolved"
	},
	"prediction.payout": func(d map[string]interface{}) (string, string) {
		return "Prediction Payout", fmt.Sprintf("You received %g MYSO from your prediction bet", num(d, "amount"))
	},
	"platform.moderator_added": func(d map[string]interface{}) (string, string) {
		return "Moderator Added", "You were added as a platform moderator"
	},
	"platform.moderator_removed": func(d map[string]interface{}) (string, string) {
		return "Moderator Removed", "You were removed as a platform moderator"
	},
	"platform.user_joined": func(d map[string]interface{}) (string, string) {
		return "User Joined Platform", "A new user joined your platform"
	},
	"platform.user_left": func(d map[string]interface{}) (string, string) {
		return "User Left Platform", "A user left your platform"
	},
	"message.created": func(d map[string]interface{}) (string, string) {
		return "New Message", "You have a new message"
	},
}

// FormatNotification renders the (title, body) pair, defaulting to a
// generic notification for event types outside the fixed table.
func FormatNotification(eventType string, eventData json.RawMessage) (title, body string) {
	formatter, ok := formatters[eventType]
	if !ok {
		return "Notification", "You have a new notification"
	}
	var data map[string]interface{}
	if err := json.Unmarshal(eventData, &data); err != nil {
		data = map[string]interface{}{}
	}
	return formatter(data)
}
