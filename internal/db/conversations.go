package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetOrCreateConversation upserts by the unique conversation_id,
// guarding the "at most one Conversation per unordered pair" invariant
// (§3) on the database's uniqueness constraint rather than an
// application-level lock.
func (d *DB) GetOrCreateConversation(ctx context.Context, conversationID, p1, p2 string) (*Conversation, error) {
	rows, err := d.Pool.Query(ctx, `
		INSERT INTO relay_conversations (conversation_id, participant1_address, participant2_address)
		VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id) DO UPDATE SET updated_at = relay_conversations.updated_at
		RETURNING id, conversation_id, participant1_address, participant2_address, last_message_at, created_at, updated_at
	`, conversationID, p1, p2)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}
	defer rows.Close()
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Conversation])
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) TouchConversation(ctx context.Context, conversationID string) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE relay_conversations
		SET last_message_at = now(), updated_at = now()
		WHERE conversation_id = $1
	`, conversationID)
	if err != nil {
		return fmt.Errorf("touch conversation %s: %w", conversationID, err)
	}
	return nil
}

func (d *DB) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, conversation_id, participant1_address, participant2_address, last_message_at, created_at, updated_at
		FROM relay_conversations WHERE conversation_id = $1
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	defer rows.Close()
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Conversation])
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (d *DB) ListConversationsForUser(ctx context.Context, userAddress string) ([]Conversation, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, conversation_id, participant1_address, participant2_address, last_message_at, created_at, updated_at
		FROM relay_conversations
		WHERE participant1_address = $1 OR participant2_address = $1
		ORDER BY COALESCE(last_message_at, created_at) DESC
	`, userAddress)
	if err != nil {
		return nil, fmt.Errorf("list conversations for user: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[Conversation])
}
