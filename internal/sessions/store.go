// Package sessions persists conversations and their messages in sqlite.
package sessions

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store manages conversation sessions.
type Store struct {
	db *sql.DB
}

// Session represents one conversation.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Message represents a single message in a session.
type Message struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Role      string            `json:"role"` // "user" or "assistant"
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewStore opens (and if needed initializes) a session store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for shared use.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) createTables() error {
	sessionsSQL := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		message_count INTEGER DEFAULT 0
	);`

	if _, err := s.db.Exec(sessionsSQL); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	messagesSQL := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		metadata TEXT DEFAULT '{}',
		FOREIGN KEY (session_id) REFERENCES sessions (id)
	);`

	if _, err := s.db.Exec(messagesSQL); err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at);",
		"CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages (session_id);",
		"CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages (timestamp);",
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// CreateSession creates a new session owned by userID.
func (s *Store) CreateSession(userID, title string) (*Session, error) {
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, title, created_at, updated_at, message_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, session.ID, session.UserID, session.Title, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(id string) (*Session, error) {
	var session Session

	row := s.db.QueryRow(`
		SELECT id, user_id, title, created_at, updated_at, message_count
		FROM sessions WHERE id = ?
	`, id)

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.MessageCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// ListSessions returns a user's sessions, most recently active first.
func (s *Store) ListSessions(userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, title, created_at, updated_at, message_count
		FROM sessions
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Title,
			&session.CreatedAt,
			&session.UpdatedAt,
			&session.MessageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// AddMessage appends a message to a session.
func (s *Store) AddMessage(sessionID, role, content string, metadata map[string]string) (*Message, error) {
	message := &Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	if message.Metadata == nil {
		message.Metadata = make(map[string]string)
	}

	metadataJSON, err := json.Marshal(message.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO messages (id, session_id, role, content, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		message.Timestamp,
		string(metadataJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if err := s.updateSessionMessageCount(sessionID); err != nil {
		return nil, err
	}

	return message, nil
}

// GetMessages retrieves messages for a session in chronological order.
// With limit > 0 the most recent messages are returned.
func (s *Store) GetMessages(sessionID string, limit int) ([]Message, error) {
	// Subquery keeps the newest N while preserving chronological order.
	// LIMIT + ASC alone would return the oldest messages instead.
	var query string
	if limit > 0 {
		query = fmt.Sprintf(`
			SELECT id, session_id, role, content, timestamp, metadata
			FROM (
				SELECT id, session_id, role, content, timestamp, metadata
				FROM messages
				WHERE session_id = ?
				ORDER BY timestamp DESC
				LIMIT %d
			) sub
			ORDER BY timestamp ASC
		`, limit)
	} else {
		query = `
			SELECT id, session_id, role, content, timestamp, metadata
			FROM messages
			WHERE session_id = ?
			ORDER BY timestamp ASC
		`
	}

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var message Message
		var metadataJSON string

		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&message.Timestamp,
			&metadataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if err := json.Unmarshal([]byte(metadataJSON), &message.Metadata); err != nil {
			message.Metadata = make(map[string]string)
		}

		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return messages, nil
}

// ClearMessages deletes all messages for a session, keeping the session row.
func (s *Store) ClearMessages(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	_, err := s.db.Exec(`
		UPDATE sessions
		SET message_count = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (s *Store) updateSessionMessageCount(sessionID string) error {
	_, err := s.db.Exec(`
		UPDATE sessions
		SET message_count = (
			SELECT COUNT(*) FROM messages WHERE session_id = ?
		),
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sessionID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session message count: %w", err)
	}
	return nil
}
