package history

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	created_at TEXT,
	last_login TEXT,
	reset_token TEXT
);

CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER,
	message TEXT,
	response TEXT,
	timestamp TEXT,
	file_name TEXT,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
`

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnknownUser is returned when no such username exists.
	ErrUnknownUser = errors.New("username not found")
	// ErrInvalidResetToken is returned when a reset code does not match.
	ErrInvalidResetToken = errors.New("invalid reset code")
)

// User is an account row, without the password hash.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}

// Exchange is one persisted question/answer pair.
type Exchange struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	FileName  string `json:"file_name,omitempty"`
}

// Account is a full user row as listed in the admin panel.
type Account struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login,omitempty"`
}

// Store persists user accounts and chat history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateUser registers a new account and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password, created_at) VALUES (?, ?, ?)",
		username, hashPassword(password), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get user id: %w", err)
	}
	return id, nil
}

// Authenticate checks credentials and updates the last-login timestamp.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username FROM users WHERE username = ? AND password = ?",
		username, hashPassword(password),
	).Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), user.ID,
	); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	return &user, nil
}

// CreateResetToken generates a 6-digit reset code for the user and
// stores it. The code is returned so the surrounding layer can deliver
// it to the user.
func (s *Store) CreateResetToken(ctx context.Context, username string) (string, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username = ?", username,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	token := fmt.Sprintf("%06d", n.Int64())

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET reset_token = ? WHERE id = ?", token, id,
	); err != nil {
		return "", fmt.Errorf("store reset code: %w", err)
	}
	return token, nil
}

// ResetPassword sets a new password if the reset code matches, and
// clears the code.
func (s *Store) ResetPassword(ctx context.Context, username, token, newPassword string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET password = ?, reset_token = NULL WHERE username = ? AND reset_token = ? AND reset_token IS NOT NULL",
		hashPassword(newPassword), username, token,
	)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if affected == 0 {
		return ErrInvalidResetToken
	}
	return nil
}

// SaveExchange appends one question/answer pair to a user's history.
func (s *Store) SaveExchange(ctx context.Context, userID int64, message, response, fileName string) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_history (user_id, message, response, timestamp, file_name) VALUES (?, ?, ?, ?, ?)",
		userID, message, response, time.Now().Format(time.RFC3339), fileName,
	); err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	return nil
}

// Users lists every account, newest first.
func (s *Store) Users(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, COALESCE(created_at, ''), COALESCE(last_login, '') FROM users ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.CreatedAt, &a.LastLogin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return accounts, nil
}

// Username resolves a user id to its username.
func (s *Store) Username(ctx context.Context, userID int64) (string, error) {
	var username string
	err := s.db.QueryRowContext(ctx,
		"SELECT username FROM users WHERE id = ?", userID,
	).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	return username, nil
}

// DeleteUser removes an account and all of its history.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM chat_history WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("delete user history: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM users WHERE id = ?", userID,
	); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ClearHistory removes a user's history while keeping the account.
func (s *Store) ClearHistory(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM chat_history WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Exchanges returns a user's most recent history, newest first.
func (s *Store) Exchanges(ctx context.Context, userID int64, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, message, response, timestamp, COALESCE(file_name, '') FROM chat_history WHERE user_id = ? ORDER BY id DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.Message, &e.Response, &e.Timestamp, &e.FileName); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return exchanges, nil
}
