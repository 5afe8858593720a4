package database

import (
	"fmt"
)

var _ FavoriteRepository = (*favoriteRepository)(nil)

type favoriteRepository struct {
	db *DB
}

func NewFavoriteRepository(db *DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// AddFavorite is idempotent: adding an already-favorited event is a no-op.
func (r *favoriteRepository) AddFavorite(eventID string) error {
	_, err := r.db.Exec(`
		INSERT INTO favorites (event_id)
		VALUES (?)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID)

	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

func (r *favoriteRepository) RemoveFavorite(eventID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE event_id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	return nil
}

func (r *favoriteRepository) ListFavorites() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT event_id FROM favorites ORDER BY created_at, event_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}

	return ids, nil
}

func (r *favoriteRepository) IsFavorite(eventID string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM favorites WHERE event_id = ?`, eventID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return count > 0, nil
}

func (r *favoriteRepository) GetFavoriteCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM favorites`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get favorite count: %w", err)
	}

	return count, nil
}
