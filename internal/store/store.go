// Package store provides SQLite-backed persistence for users, sessions, and
// completed analyses.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/biaslens/biaslens/internal/analysis"
)

// Store wraps the SQLite database. A single connection is used because
// SQLite only supports one writer.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database at the specified file path.
func Open(dbPath string, opts Options) (*Store, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents the driver from creating new files.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);

	-- Completed analyses store the full result as JSON alongside a few
	-- queryable columns for listings.
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL,
		original_text TEXT NOT NULL,
		risk_level TEXT,
		result_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = fmt.Errorf("username already taken")

// CreateUser inserts a new user and returns its ID.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return result.LastInsertId()
}

// GetUserByUsername returns a user, or nil when not found.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}

// Session is an authenticated session token.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns a session by token, or nil when not found. Expiry is
// the caller's concern; expired sessions are still returned.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	var sess Session
	var createdAt, expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&sess.Token, &sess.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.CreatedAt = parseTimestamp(createdAt)
	sess.ExpiresAt = parseTimestamp(expiresAt)
	return &sess, nil
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// AnalysisRecord is a persisted analysis.
type AnalysisRecord struct {
	ID        int64
	UserID    int64 // 0 for anonymous analyses
	Mode      string
	RiskLevel string
	CreatedAt time.Time
	Result    *analysis.Result
}

// AnalysisMetadata is the listing view of an analysis without the full
// result payload.
type AnalysisMetadata struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id,omitempty"`
	Mode      string `json:"mode"`
	RiskLevel string `json:"risk_level"`
	Snippet   string `json:"snippet"`
	CreatedAt string `json:"created_at"`
}

// SaveAnalysis persists a completed analysis and returns its ID.
func (s *Store) SaveAnalysis(ctx context.Context, userID int64, mode string, result *analysis.Result) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (user_id, mode, original_text, risk_level, result_json) VALUES (?, ?, ?, ?, ?)`,
		userID, mode, result.OriginalText, result.Summary.RiskLevel, string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}
	return res.LastInsertId()
}

// GetAnalysis retrieves an analysis by ID, or nil when not found.
func (s *Store) GetAnalysis(ctx context.Context, id int64) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var resultJSON, createdAt string
	var riskLevel sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, mode, risk_level, result_json, created_at FROM analyses WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.UserID, &rec.Mode, &riskLevel, &resultJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	rec.RiskLevel = riskLevel.String
	rec.CreatedAt = parseTimestamp(createdAt)

	var result analysis.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	rec.Result = &result
	return &rec, nil
}

// ListAnalyses returns analysis metadata for a user, newest first. A userID
// of 0 lists anonymous analyses.
func (s *Store) ListAnalyses(ctx context.Context, userID int64, limit int) ([]AnalysisMetadata, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, mode, risk_level, original_text, created_at
		 FROM analyses WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var results []AnalysisMetadata
	for rows.Next() {
		var meta AnalysisMetadata
		var riskLevel sql.NullString
		var text string
		if err := rows.Scan(&meta.ID, &meta.UserID, &meta.Mode, &riskLevel, &text, &meta.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		meta.RiskLevel = riskLevel.String
		meta.Snippet = snippet(text, 120)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// DeleteAnalysis removes an analysis by ID. Returns true when a row was
// deleted.
func (s *Store) DeleteAnalysis(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete analysis: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// snippet truncates text to max runes for listings.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
