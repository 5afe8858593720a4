package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/spota/spota-server/app/database"
)

const msgUnreachable = "Le serveur est inaccessible. Vérifiez votre connexion."

// Service owns the authentication state: the in-memory token/user/
// authenticated triple mirrored in the session repository. It is
// constructed once at startup and passed explicitly to its consumers;
// Init must be awaited before first use so session restoration is never
// racing the first operation.
//
// Every mutation rewrites the persisted triple as a whole. A mutex
// serializes mutations so two overlapping operations cannot interleave a
// partial read-modify-write.
type Service struct {
	client   *Client
	sessions database.SessionRepository

	mu            sync.Mutex
	token         string
	user          *User
	authenticated bool
	initialized   bool
}

func NewService(client *Client, sessions database.SessionRepository) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
	}
}

// Init restores the persisted session. A malformed stored profile clears
// the session rather than leaving half-restored state behind.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	session, err := s.sessions.GetSession()
	if err != nil {
		return err
	}

	if session != nil && session.Authenticated && session.Token != "" {
		var user User
		if err := json.Unmarshal([]byte(session.UserData), &user); err != nil {
			slog.Warn("Stored session profile unreadable, clearing session", "error", err)
			s.clearLocked()
			s.initialized = true
			return nil
		}

		s.token = session.Token
		s.user = &user
		s.authenticated = true
		slog.Info("Session restored", "email", user.Email)
	}

	s.initialized = true
	return nil
}

// Register creates an account and, on success, opens a session. Backend
// reachability is pre-flighted so the caller gets a crisp message instead
// of a timeout when the backend is down.
func (s *Service) Register(ctx context.Context, credentials RegisterCredentials) Result {
	if !s.client.CheckHealth(ctx) {
		return Result{Success: false, Message: msgUnreachable}
	}

	resp, err := s.client.Register(ctx, credentials)
	if err != nil {
		// The backend reports duplicate accounts as a raw constraint
		// violation; translate it for display.
		if strings.Contains(err.Error(), "CONSTRAINT") {
			return Result{Success: false, Message: msgDuplicate}
		}
		return Result{Success: false, Message: err.Error()}
	}

	if resp.Success && resp.Token != "" && resp.User != nil {
		if err := s.openSession(resp.Token, resp.User); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	}

	return Result{Success: resp.Success, Message: resp.Message, Token: resp.Token, User: resp.User}
}

// Login authenticates and, on success, opens a session.
func (s *Service) Login(ctx context.Context, credentials LoginCredentials) Result {
	if !s.client.CheckHealth(ctx) {
		return Result{Success: false, Message: msgUnreachable}
	}

	resp, err := s.client.Login(ctx, credentials)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if resp.Success && resp.Token != "" && resp.User != nil {
		if err := s.openSession(resp.Token, resp.User); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	}

	return Result{Success: resp.Success, Message: resp.Message, Token: resp.Token, User: resp.User}
}

// Profile fetches the current profile from the backend and refreshes the
// stored copy. An invalid token closes the session.
func (s *Service) Profile(ctx context.Context) Result {
	s.mu.Lock()
	token := s.token
	authenticated := s.authenticated
	s.mu.Unlock()

	if !authenticated || token == "" {
		return Result{Success: false, Message: "Non authentifié"}
	}

	resp, err := s.client.Me(ctx, token)
	if err != nil {
		if strings.Contains(err.Error(), "Token") {
			s.Logout(ctx)
		}
		return Result{Success: false, Message: err.Error()}
	}

	if resp.Success && resp.User != nil {
		s.mu.Lock()
		s.user = resp.User
		saveErr := s.persistLocked()
		s.mu.Unlock()
		if saveErr != nil {
			slog.Warn("Failed to persist refreshed profile", "error", saveErr)
		}
	}

	return Result{Success: resp.Success, Message: resp.Message, User: resp.User}
}

// UpdateProfile performs a two-phase profile edit: the update is applied
// locally first so consumers see it immediately, then reconciled with the
// backend's response, or rolled back in full when the backend rejects it.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) Result {
	s.mu.Lock()

	if !s.authenticated || s.token == "" {
		s.mu.Unlock()
		return Result{Success: false, Message: "Non authentifié"}
	}

	token := s.token
	previous := s.user

	// Tentative local apply.
	tentative := *previous
	if update.Name != nil {
		tentative.Name = *update.Name
	}
	if update.Email != nil {
		tentative.Email = *update.Email
	}
	s.user = &tentative
	s.mu.Unlock()

	resp, err := s.client.UpdateProfile(ctx, token, update)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil || !resp.Success {
		// Roll back the tentative apply.
		s.user = previous

		message := "Erreur lors de la mise à jour du profil"
		if err != nil {
			message = err.Error()
		} else if resp.Message != "" {
			message = resp.Message
		}
		return Result{Success: false, Message: message}
	}

	if resp.User != nil {
		s.user = resp.User
	}
	if saveErr := s.persistLocked(); saveErr != nil {
		slog.Warn("Failed to persist updated profile", "error", saveErr)
	}

	return Result{Success: true, Message: resp.Message, User: s.user}
}

// DeleteAccount removes the account on the backend and closes the local
// session once the backend confirms.
func (s *Service) DeleteAccount(ctx context.Context) Result {
	s.mu.Lock()
	token := s.token
	authenticated := s.authenticated
	s.mu.Unlock()

	if !authenticated || token == "" {
		return Result{Success: false, Message: "Non authentifié"}
	}

	resp, err := s.client.DeleteAccount(ctx, token)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if resp.Success {
		s.Logout(ctx)
	}

	return Result{Success: resp.Success, Message: resp.Message}
}

// Logout clears the persisted triple and the in-memory state. The in-memory
// state is reset even when clearing storage fails.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.ClearSession(); err != nil {
		slog.Warn("Failed to clear stored session", "error", err)
	}

	s.clearLocked()
}

func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Service) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Service) openSession(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user
	s.authenticated = true

	return s.persistLocked()
}

func (s *Service) persistLocked() error {
	userData, err := json.Marshal(s.user)
	if err != nil {
		return err
	}
	return s.sessions.SaveSession(s.token, string(userData), s.authenticated)
}

func (s *Service) clearLocked() {
	s.token = ""
	s.user = nil
	s.authenticated = false
}
