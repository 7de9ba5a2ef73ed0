package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (d *DB) InsertMessage(ctx context.Context, m Message) (int64, error) {
	var id int64
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO relay_messages
		    (conversation_id, sender_address, recipient_address, content, content_type, media_urls, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, m.ConversationID, m.SenderAddress, m.RecipientAddress, m.Content, m.ContentType, m.MediaURLs, m.Metadata).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	return id, nil
}

func (d *DB) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]Message, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, conversation_id, sender_address, recipient_address, content, content_type, media_urls, metadata, created_at, delivered_at, read_at
		FROM relay_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[Message])
}
