// Package outbox implements C1: draining the outbox table into the
// partitioned event log. Grounded on
// original_source/relay-outbox/src/poller.rs for the poll/mark loop
// shape, with the fuller §4.1 routing table superseding the original's
// simpler match statement.
package outbox

import "strings"

// routingTable maps an event_type prefix to its destination topic,
// per §4.1.
var routingTable = []struct {
	prefix string
	topic  string
}{
	{"reaction.", "events.post.reaction"},
	{"repost.", "events.post.repost"},
	{"tip.", "events.post.tip"},
	{"post.", "events.post.created"},
	{"ownership.", "events.post.ownership"},
	{"comment.", "events.comment.created"},
	{"message.", "events.message.created"},
	{"follow.", "events.follow.created"},
	{"unfollow.", "events.unfollow.created"},
	{"spt.", "events.spt.created"},
	{"governance.", "events.governance.created"},
	{"prediction.", "events.prediction.created"},
	{"platform.", "events.platform.created"},
}

const unknownTopic = "events.unknown"

// RouteFor returns the destination topic for eventType, falling back
// to events.unknown when no prefix matches.
func RouteFor(eventType string) string {
	for _, r := range routingTable {
		if strings.HasPrefix(eventType, r.prefix) {
			return r.topic
		}
	}
	return unknownTopic
}

// MessageTopic is the one topic C3 subscribes to.
const MessageTopic = "events.message.created"

// NotifyTopics returns every topic C2 subscribes to: all routed
// topics plus the unknown fallback, except MessageTopic (§6: "C2
// subscribes to every events.* topic except events.message.created").
func NotifyTopics() []string {
	seen := map[string]bool{unknownTopic: true}
	topics := []string{unknownTopic}
	for _, r := range routingTable {
		if r.topic == MessageTopic || seen[r.topic] {
			continue
		}
		seen[r.topic] = true
		topics = append(topics, r.topic)
	}
	return topics
}
