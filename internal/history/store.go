// Package history persists each answered chat turn so a conversation can be
// read back by id.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

const (
	redisCacheTTL  = 10 * time.Minute
	redisKeyPrefix = "assistant:conv:"

	// MaxEntries bounds how many turns ListByConversation returns.
	MaxEntries = 100
)

// Entry is one answered turn.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	Intent         string    `json:"intent"`
	Message        string    `json:"message"`
	Response       string    `json:"response"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store writes to PostgreSQL and caches reads in Redis. A Store without a
// database accepts appends and lists nothing; a nil Redis client disables
// the cache.
type Store struct {
	db    DB
	redis *redis.Client
	now   func() time.Time
}

func NewStore(db DB, rdb *redis.Client) *Store {
	return &Store{db: db, redis: rdb, now: time.Now}
}

// Enabled reports whether entries are persisted.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Append stores one turn and returns it with its id and timestamp filled in.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if !s.Enabled() {
		return e, nil
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO conversations (id, conversation_id, user_id, intent, message, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.ConversationID, e.UserID, e.Intent, e.Message, e.Response, e.CreatedAt)
	if err != nil {
		return e, fmt.Errorf("insert conversation entry: %w", err)
	}

	if s.redis != nil {
		s.redis.Del(ctx, redisKeyPrefix+e.ConversationID)
	}
	return e, nil
}

// ListByConversation returns the turns of a conversation, oldest first.
func (s *Store) ListByConversation(ctx context.Context, conversationID string) ([]Entry, error) {
	if !s.Enabled() {
		return []Entry{}, nil
	}

	// Check Redis cache first
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, redisKeyPrefix+conversationID).Bytes()
		if err == nil {
			var entries []Entry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.listDB(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(entries)
		if err == nil {
			s.redis.Set(ctx, redisKeyPrefix+conversationID, data, redisCacheTTL)
		}
	}
	return entries, nil
}

func (s *Store) listDB(ctx context.Context, conversationID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, user_id, intent, message, response, created_at
		FROM conversations
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, conversationID, MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.UserID, &e.Intent, &e.Message, &e.Response, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read conversations: %w", err)
	}
	return entries, nil
}
