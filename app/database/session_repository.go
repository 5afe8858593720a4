package database

import (
	"database/sql"
	"fmt"
)

var _ SessionRepository = (*sessionRepository)(nil)

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) SessionRepository {
	return &sessionRepository{db: db}
}

// GetSession returns the persisted triple, or nil when no session is stored.
func (r *sessionRepository) GetSession() (*Session, error) {
	var session Session
	err := r.db.QueryRow(`
		SELECT token, user_data, authenticated
		FROM auth_session
		WHERE id = 1
	`).Scan(&session.Token, &session.UserData, &session.Authenticated)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// SaveSession writes the whole triple in a single statement so a reader can
// never observe a partially updated session.
func (r *sessionRepository) SaveSession(token, userData string, authenticated bool) error {
	_, err := r.db.Exec(`
		INSERT INTO auth_session (id, token, user_data, authenticated, updated_at)
		VALUES (1, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_data = excluded.user_data,
			authenticated = excluded.authenticated,
			updated_at = excluded.updated_at
	`, token, userData, authenticated)

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *sessionRepository) ClearSession() error {
	_, err := r.db.Exec(`DELETE FROM auth_session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}
