// internal/history/store.go
//
// Question history backed by the SQLite history table.
// Responsibilities:
//   - Record each interpreted question for a signed-in user or a guest
//     (anonymous cookie id).
//   - List a user's recent questions, newest first.
//   - Claim a guest's questions for an account on signup/login.

package history

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Entry is one interpreted question.
// Exactly one of UserID and AnonymousID identifies the owner.
type Entry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	AnonymousID string    `json:"-"`
	Mode        string    `json:"mode"`
	Question    string    `json:"question"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store reads and writes history rows.
type Store struct{ db *sql.DB }

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts e.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.UserID == "" && e.AnonymousID == "" {
		return errors.New("history entry has no owner")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history(user_id, anonymous_id, mode, question, kind) VALUES(?,?,?,?,?)`,
		nullable(e.UserID), nullable(e.AnonymousID), e.Mode, e.Question, e.Kind,
	)
	return err
}

// Recent returns the newest entries of a user, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, question, kind, created_at
FROM history
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		e := Entry{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Mode, &e.Question, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Claim moves anonymous history onto a user account after sign-in.
func (s *Store) Claim(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE history SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
