package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, ConversationID("0xA", "0xB"), ConversationID("0xB", "0xA"))
}

func TestConversationIDIsCanonicallyOrdered(t *testing.T) {
	assert.Equal(t, "0xA:0xB", ConversationID("0xB", "0xA"))
}
