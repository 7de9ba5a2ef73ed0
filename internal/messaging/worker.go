package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/crypto"
	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/eventlog"
)

// Worker implements the C3 pipeline (§4.3 steps 1-7), grounded on
// MessagingService::process_message.
type Worker struct {
	db     *db.DB
	cache  *cache.Cache
	sealer *crypto.Sealer
	log    zerolog.Logger
}

func NewWorker(database *db.DB, c *cache.Cache, sealer *crypto.Sealer, log zerolog.Logger) *Worker {
	return &Worker{db: database, cache: c, sealer: sealer, log: log}
}

type messageEventData struct {
	Sender    string `json:"sender_address"`
	Recipient string `json:"recipient_address"`
	Content   string `json:"content"`
}

// HandleEvent processes one message.created envelope.
func (w *Worker) HandleEvent(ctx context.Context, env eventlog.Envelope) error {
	var data messageEventData
	if err := json.Unmarshal(env.EventData, &data); err != nil {
		return fmt.Errorf("decode message event: %w", err)
	}
	if data.Sender == "" || data.Recipient == "" {
		w.log.Warn().Str("event_type", env.EventType).Msg("message event missing sender or recipient, dropping")
		return nil
	}

	conversationID := ConversationID(data.Sender, data.Recipient)
	p1, p2 := data.Sender, data.Recipient
	if p2 < p1 {
		p1, p2 = p2, p1
	}

	if _, err := w.db.GetOrCreateConversation(ctx, conversationID, p1, p2); err != nil {
		return fmt.Errorf("get or create conversation: %w", err)
	}

	envelope, err := w.sealer.Seal(conversationID, []byte(data.Content))
	if err != nil {
		return fmt.Errorf("encrypt message: %w", err)
	}

	if _, err := w.db.InsertMessage(ctx, db.Message{
		ConversationID:   conversationID,
		SenderAddress:    data.Sender,
		RecipientAddress: data.Recipient,
		Content:          envelope,
		ContentType:      "text/plain",
	}); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	if err := w.db.TouchConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := w.cacheMessage(ctx, conversationID, data); err != nil {
		return fmt.Errorf("cache message: %w", err)
	}

	// Restores the original's INBOX:{user} write (SPEC_FULL.md §5.3
	// "added, from original_source"), independent of CHAT:{conv_id}.
	if err := w.pushInbox(ctx, data); err != nil {
		return fmt.Errorf("push inbox cache: %w", err)
	}

	if err := w.emitLiveStream(ctx, conversationID, data); err != nil {
		return fmt.Errorf("emit live stream: %w", err)
	}

	return nil
}

func (w *Worker) cacheMessage(ctx context.Context, conversationID string, data messageEventData) error {
	payload, err := json.Marshal(struct {
		Sender    string    `json:"sender"`
		Recipient string    `json:"recipient"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}{data.Sender, data.Recipient, data.Content, time.Now()})
	if err != nil {
		return err
	}
	return w.cache.PushChat(ctx, conversationID, payload)
}

func (w *Worker) pushInbox(ctx context.Context, data messageEventData) error {
	payload, err := json.Marshal(struct {
		Type      string    `json:"type"`
		Sender    string    `json:"sender"`
		Recipient string    `json:"recipient"`
		CreatedAt time.Time `json:"created_at"`
	}{"message", data.Sender, data.Recipient, time.Now()})
	if err != nil {
		return err
	}
	return w.cache.PushInbox(ctx, data.Recipient, payload)
}

func (w *Worker) emitLiveStream(ctx context.Context, conversationID string, data messageEventData) error {
	return w.cache.AppendStream(ctx, data.Recipient, map[string]interface{}{
		"data": mustMarshal(struct {
			Type           string `json:"type"`
			ConversationID string `json:"conversation_id"`
			Content        string `json:"content"`
		}{"message", conversationID, data.Content}),
	})
}

func mustMarshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
