package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRecipientsKnownEventType(t *testing.T) {
	data, _ := json.Marshal(map[string]interface{}{"post_owner": "0xA", "reaction": "👍"})
	recipients, known := ExtractRecipients("reaction.created", data)
	assert.True(t, known)
	assert.Equal(t, []string{"0xA"}, recipients)
}

func TestExtractRecipientsMissingFieldNeverPanics(t *testing.T) {
	data, _ := json.Marshal(map[string]interface{}{})
	recipients, known := ExtractRecipients("reaction.created", data)
	assert.True(t, known)
	assert.Empty(t, recipients)
}

func TestExtractRecipientsUnknownEventType(t *testing.T) {
	_, known := ExtractRecipients("something.weird", json.RawMessage(`{}`))
	assert.False(t, known)
}

func TestExtractRecipientsReservedEventTypesYieldNone(t *testing.T) {
	data, _ := json.Marshal(map[string]interface{}{"post_owner": "0xA"})
	recipients, known := ExtractRecipients("post.created", data)
	assert.True(t, known)
	assert.Empty(t, recipients)
}

func TestFormatNotificationMissingFieldsUseDefaults(t *testing.T) {
	title, body := FormatNotification("tip.created", json.RawMessage(`{}`))
	assert.Equal(t, "New Tip", title)
	assert.Contains(t, body, "Someone tipped you 0 MYSO")
}

func TestFormatNotificationUnknownEventType(t *testing.T) {
	title, body := FormatNotification("something.weird", json.RawMessage(`{}`))
	assert.Equal(t, "Notification", title)
	assert.Equal(t, "You have a new notification", body)
}
