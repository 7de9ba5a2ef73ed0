package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteFor(t *testing.T) {
	cases := map[string]string{
		"reaction.created":             "events.post.reaction",
		"repost.created":                "events.post.repost",
		"tip.created":                   "events.post.tip",
		"post.created":                  "events.post.created",
		"ownership.transferred":         "events.post.ownership",
		"comment.created":               "events.comment.created",
		"message.created":               "events.message.created",
		"follow.created":                "events.follow.created",
		"unfollow.created":              "events.unfollow.created",
		"spt.token_bought":              "events.spt.created",
		"governance.proposal_submitted": "events.governance.created",
		"prediction.bet_placed":         "events.prediction.created",
		"platform.moderator_added":      "events.platform.created",
		"something.weird":               "events.unknown",
	}
	for eventType, wantTopic := range cases {
		assert.Equal(t, wantTopic, RouteFor(eventType), eventType)
	}
}

func TestNotifyTopicsExcludesMessageTopic(t *testing.T) {
	topics := NotifyTopics()
	assert.NotContains(t, topics, MessageTopic)
	assert.Contains(t, topics, "events.post.created")
	assert.Contains(t, topics, "events.unknown")
}

func TestNotifyTopicsHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, topic := range NotifyTopics() {
		assert.False(t, seen[topic], "duplicate topic %q", topic)
		seen[topic] = true
	}
}
