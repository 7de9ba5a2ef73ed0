package fcm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequestMarshalsStandardPayloadShape(t *testing.T) {
	body, err := json.Marshal(sendRequest{
		To: "device-token",
		Notification: notificationPayload{
			Title: "New reply",
			Body:  "someone replied to your post",
		},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "device-token", decoded["to"])
	notification, ok := decoded["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "New reply", notification["title"])
	assert.Equal(t, "someone replied to your post", notification["body"])
}

func TestSendResponseDecodesSuccessAndFailureCounts(t *testing.T) {
	var result sendResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":0,"failure":1}`), &result))
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Failure)
}
