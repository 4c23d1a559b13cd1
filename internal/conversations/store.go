package conversations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskmate-backend/internal/chat"
)

// ErrNotFound covers both a missing conversation and one owned by someone
// else.
var ErrNotFound = errors.New("conversation not found")

// Conversation is a chat thread. Pending holds a staged confirmation that
// survives across requests; it lives on the conversation row as JSONB.
type Conversation struct {
	ID        int                       `json:"id"`
	UserID    string                    `json:"-"`
	Pending   *chat.PendingConfirmation `json:"-"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// StoredMessage is one persisted transcript entry.
type StoredMessage struct {
	ID        int             `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists conversations and their append-only transcripts. Like the
// task store, every query is owner-scoped.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, owner string) (Conversation, error) {
	var c Conversation
	c.UserID = owner
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO conversations (user_id) VALUES ($1) RETURNING id, created_at, updated_at`,
		owner,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func scanConversation(row *sql.Row) (Conversation, error) {
	var c Conversation
	var pending []byte
	err := row.Scan(&c.ID, &c.UserID, &pending, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	if len(pending) > 0 {
		var pc chat.PendingConfirmation
		if err := json.Unmarshal(pending, &pc); err != nil {
			return Conversation{}, fmt.Errorf("decode pending confirmation: %w", err)
		}
		c.Pending = &pc
	}
	return c, nil
}

func (s *Store) Get(ctx context.Context, owner string, id int) (Conversation, error) {
	c, err := scanConversation(s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, pending_confirmation, created_at, updated_at
		 FROM conversations WHERE id=$1 AND user_id=$2`,
		id, owner,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return c, err
}

// Latest returns the most recently active conversation, or ErrNotFound when
// the user has none yet.
func (s *Store) Latest(ctx context.Context, owner string) (Conversation, error) {
	c, err := scanConversation(s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, pending_confirmation, created_at, updated_at
		 FROM conversations WHERE user_id=$1
		 ORDER BY updated_at DESC, id DESC LIMIT 1`,
		owner,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Conversation{}, fmt.Errorf("latest conversation: %w", err)
	}
	return c, err
}

// SavePending stores (or clears, when pending is nil) the staged
// confirmation and bumps the conversation's activity timestamp.
func (s *Store) SavePending(ctx context.Context, owner string, id int, pending *chat.PendingConfirmation) error {
	var blob any
	if pending != nil {
		b, err := json.Marshal(pending)
		if err != nil {
			return fmt.Errorf("encode pending confirmation: %w", err)
		}
		blob = b
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE conversations SET pending_confirmation=$1, updated_at=now()
		 WHERE id=$2 AND user_id=$3`,
		blob, id, owner,
	)
	if err != nil {
		return fmt.Errorf("save pending confirmation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Messages returns the transcript in chronological order, capped at limit
// most recent entries.
func (s *Store) Messages(ctx context.Context, owner string, conversationID, limit int) ([]StoredMessage, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, role, content, tool_calls, created_at FROM messages
		 WHERE conversation_id=$1 AND user_id=$2
		 ORDER BY created_at DESC, id DESC LIMIT $3`,
		conversationID, owner, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var m StoredMessage
		var calls []byte
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &calls, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if len(calls) > 0 {
			m.ToolCalls = json.RawMessage(calls)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// Newest-first from the query; the transcript reads oldest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// History implements chat.ConversationStore.
func (s *Store) History(ctx context.Context, owner string, conversationID, limit int) ([]chat.Message, error) {
	stored, err := s.Messages(ctx, owner, conversationID, limit)
	if err != nil {
		return nil, err
	}
	msgs := make([]chat.Message, len(stored))
	for i, m := range stored {
		msgs[i] = chat.Message{Role: m.Role, Content: m.Content}
	}
	return msgs, nil
}

// Append implements chat.ConversationStore. The transcript is append-only;
// nothing ever updates or deletes a message row.
func (s *Store) Append(ctx context.Context, owner string, conversationID int, role, content string, toolCalls []chat.ToolCall) error {
	var calls any
	if len(toolCalls) > 0 {
		b, err := json.Marshal(toolCalls)
		if err != nil {
			return fmt.Errorf("encode tool calls: %w", err)
		}
		calls = b
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, user_id, role, content, tool_calls)
		 VALUES ($1, $2, $3, $4, $5)`,
		conversationID, owner, role, content, calls,
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}
