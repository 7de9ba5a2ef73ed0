// Package messaging implements C3: turning a message.created event
// into an encrypted, persisted, cached, and streamed direct message.
// Grounded on original_source/relay-messaging/src/service.rs.
package messaging

// ConversationID computes the canonical, order-independent identifier
// for a two-party conversation (§4.3 step 1 / GLOSSARY).
func ConversationID(a, b string) string {
	p1, p2 := a, b
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return p1 + ":" + p2
}
