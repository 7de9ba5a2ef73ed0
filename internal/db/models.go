package db

import (
	"encoding/json"
	"time"
)

type OutboxRow struct {
	ID            int64           `db:"id"`
	EventType     string          `db:"event_type"`
	EventData     json.RawMessage `db:"event_data"`
	EventID       *string         `db:"event_id"`
	TransactionID *string         `db:"transaction_id"`
	CreatedAt     time.Time       `db:"created_at"`
	ProcessedAt   *time.Time      `db:"processed_at"`
	PublishedAt   *time.Time      `db:"published_at"`
	RetryCount    int             `db:"retry_count"`
	ErrorMessage  *string         `db:"error_message"`
	Status        string          `db:"status"`
}

type Notification struct {
	ID               int64           `db:"id"`
	UserAddress      string          `db:"user_address"`
	NotificationType string          `db:"notification_type"`
	Title            string          `db:"title"`
	Body             string          `db:"body"`
	Data             json.RawMessage `db:"data"`
	PlatformID       *string         `db:"platform_id"`
	IdempotencyKey   *string         `db:"idempotency_key"`
	ReadAt           *time.Time      `db:"read_at"`
	CreatedAt        time.Time       `db:"created_at"`
}

type Conversation struct {
	ID                   int64      `db:"id"`
	ConversationID       string     `db:"conversation_id"`
	Participant1Address  string     `db:"participant1_address"`
	Participant2Address  string     `db:"participant2_address"`
	LastMessageAt        *time.Time `db:"last_message_at"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

type Message struct {
	ID                int64           `db:"id"`
	ConversationID    string          `db:"conversation_id"`
	SenderAddress     string          `db:"sender_address"`
	RecipientAddress  string          `db:"recipient_address"`
	Content           []byte          `db:"content"`
	ContentType       string          `db:"content_type"`
	MediaURLs         json.RawMessage `db:"media_urls"`
	Metadata          json.RawMessage `db:"metadata"`
	CreatedAt         time.Time       `db:"created_at"`
	DeliveredAt       *time.Time      `db:"delivered_at"`
	ReadAt            *time.Time      `db:"read_at"`
}

type UserPreferences struct {
	UserAddress        string          `db:"user_address"`
	PushEnabled        bool            `db:"push_enabled"`
	EmailEnabled       bool            `db:"email_enabled"`
	SMSEnabled         bool            `db:"sms_enabled"`
	NotificationTypes  json.RawMessage `db:"notification_types"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

type DeviceToken struct {
	ID           int64     `db:"id"`
	UserAddress  string    `db:"user_address"`
	DeviceToken  string    `db:"device_token"`
	Platform     string    `db:"platform"`
	DeviceID     *string   `db:"device_id"`
	AppVersion   *string   `db:"app_version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastUsedAt   time.Time `db:"last_used_at"`
}

type WSConnection struct {
	ID               int64      `db:"id"`
	UserAddress      string     `db:"user_address"`
	ConnectionID     string     `db:"connection_id"`
	ConnectedAt      time.Time  `db:"connected_at"`
	LastHeartbeatAt  time.Time  `db:"last_heartbeat_at"`
	DisconnectedAt   *time.Time `db:"disconnected_at"`
}

type PlatformDeliveryConfig struct {
	ID               int64     `db:"id"`
	PlatformID       string    `db:"platform_id"`
	ApnsBundleID     *string   `db:"apns_bundle_id"`
	ApnsKeyID        *string   `db:"apns_key_id"`
	ApnsTeamID       *string   `db:"apns_team_id"`
	ApnsKeyPath      *string   `db:"apns_key_path"`
	ApnsKeyContent   *string   `db:"apns_key_content"`
	FCMServerKey     *string   `db:"fcm_server_key"`
	ResendAPIKey     *string   `db:"resend_api_key"`
	ResendFromEmail  *string   `db:"resend_from_email"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type Profile struct {
	ID           int64  `db:"id"`
	OwnerAddress string `db:"owner_address"`
}
