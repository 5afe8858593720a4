package database

type SessionRepository interface {
	GetSession() (*Session, error)
	SaveSession(token, userData string, authenticated bool) error
	ClearSession() error
}

type FavoriteRepository interface {
	AddFavorite(eventID string) error
	RemoveFavorite(eventID string) error
	ListFavorites() ([]string, error)
	IsFavorite(eventID string) (bool, error)
	GetFavoriteCount() (int, error)
}
