// internal/accounts/accounts.go
//
// Accounts that keep a learner's question history across devices.
// Responsibilities:
//   - Create: validate credentials, hash with bcrypt, insert under a uuid.
//   - Authenticate: case-insensitive username lookup + hash check.
//   - ByID: resolve the subject of a verified token to a live account.
//
// Notes:
//   - Username uniqueness is enforced by the users table (UNIQUE COLLATE NOCASE);
//     a constraint violation is reported as ErrUsernameTaken.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("account not found")
)

// ValidationError describes credentials rejected before any lookup.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return e.Reason }

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,24}$`)

// bcrypt ignores input past 72 bytes.
const (
	minPassword = 8
	maxPassword = 72
)

// User is an account as exposed to clients.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists accounts in the users table.
type Store struct {
	db   *sql.DB
	cost int
	now  func() time.Time
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, cost: bcrypt.DefaultCost, now: time.Now}
}

// Validate checks a username and password for signup.
func Validate(username, password string) error {
	if !usernameRe.MatchString(username) {
		return &ValidationError{Reason: "username must be 3-24 letters, numbers or underscores"}
	}
	if len(password) < minPassword || len(password) > maxPassword {
		return &ValidationError{Reason: fmt.Sprintf("password must be %d-%d characters", minPassword, maxPassword)}
	}
	return nil
}

// Create registers a new account.
func (s *Store) Create(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if err := Validate(username, password); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{ID: uuid.NewString(), Username: username, CreatedAt: s.now().UTC().Truncate(time.Second)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, string(hash), u.CreatedAt.Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return User{}, ErrUsernameTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the account whose credentials match.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, hash, err := s.scan(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		strings.TrimSpace(username)))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ByID loads an account by id.
func (s *Store) ByID(ctx context.Context, id string) (User, error) {
	u, _, err := s.scan(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
	return u, err
}

func (s *Store) scan(row *sql.Row) (User, string, error) {
	var (
		u       User
		hash    string
		created string
	)
	err := row.Scan(&u.ID, &u.Username, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", fmt.Errorf("load user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, hash, nil
}
