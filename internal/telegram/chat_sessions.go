package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"comida-a-casa/internal/database"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/shopping"
)

// ChatSession is the last plan generated in a chat and its shopping list.
type ChatSession struct {
	ChatID    int64
	UserID    string
	Plan      menu.Plan
	Shopping  []shopping.Item
	UpdatedAt time.Time
}

// storedItem is the persisted form of a shopping item. The checked flag
// stays in memory.
type storedItem struct {
	Ingredient string            `json:"ingredient"`
	Quantity   shopping.Quantity `json:"quantity"`
	Unit       string            `json:"unit"`
	Category   string            `json:"category"`
}

// ChatSessions stores one ChatSession per chat.
type ChatSessions struct {
	db  *sql.DB
	now func() time.Time
}

// NewChatSessions creates a ChatSessions over db.
func NewChatSessions(db *sql.DB) *ChatSessions {
	return &ChatSessions{db: db, now: time.Now}
}

// SavePlan stores plan as the chat's current plan and drops its shopping
// list.
func (s *ChatSessions) SavePlan(ctx context.Context, chatID int64, userID string, plan menu.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO chat_sessions (chat_id, user_id, plan, shopping, updated_at)
VALUES (?, ?, ?, '', ?)
ON CONFLICT (chat_id) DO UPDATE SET
    user_id = excluded.user_id,
    plan = excluded.plan,
    shopping = '',
    updated_at = excluded.updated_at`,
		chatID, userID, string(data), database.FormatTime(s.now()))
	if err != nil {
		return fmt.Errorf("failed to save chat plan: %w", err)
	}
	return nil
}

// SaveShopping stores the shopping list of the chat's current plan.
func (s *ChatSessions) SaveShopping(ctx context.Context, chatID int64, items []shopping.Item) error {
	stored := make([]storedItem, len(items))
	for i, it := range items {
		stored[i] = storedItem{Ingredient: it.Ingredient, Quantity: it.Quantity, Unit: it.Unit, Category: it.Category}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE chat_sessions SET shopping = ?, updated_at = ? WHERE chat_id = ?`,
		string(data), database.FormatTime(s.now()), chatID)
	if err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no plan stored for chat %d", chatID)
	}
	return nil
}

// Get returns the session of chatID, or nil when the chat has none.
func (s *ChatSessions) Get(ctx context.Context, chatID int64) (*ChatSession, error) {
	var sess ChatSession
	var plan, items, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT chat_id, user_id, plan, shopping, updated_at FROM chat_sessions WHERE chat_id = ?`, chatID).
		Scan(&sess.ChatID, &sess.UserID, &plan, &items, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}

	if plan != "" {
		if err := json.Unmarshal([]byte(plan), &sess.Plan); err != nil {
			return nil, fmt.Errorf("failed to decode chat plan: %w", err)
		}
	}
	if items != "" {
		var stored []storedItem
		if err := json.Unmarshal([]byte(items), &stored); err != nil {
			return nil, fmt.Errorf("failed to decode shopping list: %w", err)
		}
		sess.Shopping = make([]shopping.Item, len(stored))
		for i, it := range stored {
			sess.Shopping[i] = shopping.Item{Ingredient: it.Ingredient, Quantity: it.Quantity, Unit: it.Unit, Category: it.Category}
		}
	}
	if sess.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete removes the session of chatID.
func (s *ChatSessions) Delete(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}
