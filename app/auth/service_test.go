package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spota/spota-server/app/database"
)

// fakeSessionRepository is an in-memory stand-in for the SQLite-backed
// repository.
type fakeSessionRepository struct {
	session *database.Session
	saveErr error
}

func (f *fakeSessionRepository) GetSession() (*database.Session, error) {
	return f.session, nil
}

func (f *fakeSessionRepository) SaveSession(token, userData string, authenticated bool) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.session = &database.Session{Token: token, UserData: userData, Authenticated: authenticated}
	return nil
}

func (f *fakeSessionRepository) ClearSession() error {
	f.session = nil
	return nil
}

func newBackend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/", handler)
	server := httptest.NewServer(mux)
	client := NewClient(server.URL+"/api", &http.Client{Timeout: 5 * time.Second}, "test")
	return server, client
}

func TestService_Login_OpensSession(t *testing.T) {
	server, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "Connexion réussie", "token": "jwt-abc",
			"user": {"id": 1, "email": "a@b.fr", "name": "Alice"}}`))
	})
	defer server.Close()

	repo := &fakeSessionRepository{}
	service := NewService(client, repo)

	result := service.Login(context.Background(), LoginCredentials{Email: "a@b.fr", Password: "secret"})

	if !result.Success {
		t.Fatalf("Expected success, got message: %s", result.Message)
	}
	if !service.IsAuthenticated() {
		t.Errorf("Expected service to be authenticated")
	}
	if service.Token() != "jwt-abc" {
		t.Errorf("Expected token 'jwt-abc', got '%s'", service.Token())
	}
	if repo.session == nil || repo.session.Token != "jwt-abc" || !repo.session.Authenticated {
		t.Errorf("Expected session to be persisted")
	}
}

func TestService_Login_BackendUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/api",
		&http.Client{Timeout: 100 * time.Millisecond}, "test")
	service := NewService(client, &fakeSessionRepository{})

	result := service.Login(context.Background(), LoginCredentials{})

	if result.Success {
		t.Fatalf("Expected failure")
	}
	if result.Message != msgUnreachable {
		t.Errorf("Expected unreachable message, got '%s'", result.Message)
	}
}

func TestService_Register_TranslatesConstraintViolation(t *testing.T) {
	server, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "SQLITE_CONSTRAINT: UNIQUE constraint failed: users.email"}`))
	})
	defer server.Close()

	service := NewService(client, &fakeSessionRepository{})

	result := service.Register(context.Background(), RegisterCredentials{Email: "a@b.fr"})

	if result.Success {
		t.Fatalf("Expected failure")
	}
	if result.Message != msgDuplicate {
		t.Errorf("Expected duplicate account message, got '%s'", result.Message)
	}
}

func TestService_Init_RestoresSession(t *testing.T) {
	repo := &fakeSessionRepository{
		session: &database.Session{
			Token:         "jwt-stored",
			UserData:      `{"id": 1, "email": "a@b.fr", "name": "Alice"}`,
			Authenticated: true,
		},
	}
	service := NewService(nil, repo)

	if err := service.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if !service.IsAuthenticated() {
		t.Errorf("Expected restored session to be authenticated")
	}
	if service.Token() != "jwt-stored" {
		t.Errorf("Expected stored token, got '%s'", service.Token())
	}
	if user := service.User(); user == nil || user.Email != "a@b.fr" {
		t.Errorf("Expected restored user profile")
	}
}

func TestService_Init_MalformedProfileClearsSession(t *testing.T) {
	repo := &fakeSessionRepository{
		session: &database.Session{
			Token:         "jwt-stored",
			UserData:      "not json",
			Authenticated: true,
		},
	}
	service := NewService(nil, repo)

	if err := service.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if service.IsAuthenticated() {
		t.Errorf("Expected malformed session to be cleared")
	}
	if service.Token() != "" {
		t.Errorf("Expected no token, got '%s'", service.Token())
	}
}

func TestService_Init_NoStoredSession(t *testing.T) {
	service := NewService(nil, &fakeSessionRepository{})

	if err := service.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if service.IsAuthenticated() {
		t.Errorf("Expected unauthenticated state")
	}
}

func TestService_UpdateProfile_Success(t *testing.T) {
	server, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "Profil mis à jour",
			"user": {"id": 1, "email": "a@b.fr", "name": "Alicia"}}`))
	})
	defer server.Close()

	repo := &fakeSessionRepository{}
	service := NewService(client, repo)
	mustLogin(t, service, repo)

	newName := "Alicia"
	result := service.UpdateProfile(context.Background(), ProfileUpdate{Name: &newName})

	if !result.Success {
		t.Fatalf("Expected success, got message: %s", result.Message)
	}
	if user := service.User(); user == nil || user.Name != "Alicia" {
		t.Errorf("Expected updated name, got %+v", service.User())
	}
}

func TestService_UpdateProfile_RollbackOnFailure(t *testing.T) {
	server, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": false, "message": "Email déjà utilisé"}`))
	})
	defer server.Close()

	repo := &fakeSessionRepository{}
	service := NewService(client, repo)
	mustLogin(t, service, repo)

	original := service.User().Name

	newName := "Usurpateur"
	result := service.UpdateProfile(context.Background(), ProfileUpdate{Name: &newName})

	if result.Success {
		t.Fatalf("Expected failure")
	}
	if result.Message != "Email déjà utilisé" {
		t.Errorf("Expected backend message, got '%s'", result.Message)
	}
	if user := service.User(); user == nil || user.Name != original {
		t.Errorf("Expected rollback to '%s', got %+v", original, service.User())
	}
}

func TestService_UpdateProfile_RequiresAuthentication(t *testing.T) {
	service := NewService(nil, &fakeSessionRepository{})

	newName := "x"
	result := service.UpdateProfile(context.Background(), ProfileUpdate{Name: &newName})

	if result.Success {
		t.Errorf("Expected failure for unauthenticated update")
	}
}

func TestService_Logout_ClearsEverything(t *testing.T) {
	repo := &fakeSessionRepository{}
	service := NewService(nil, repo)
	if err := service.openSession("jwt-abc", &User{ID: 1, Email: "a@b.fr"}); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}

	service.Logout(context.Background())

	if service.IsAuthenticated() {
		t.Errorf("Expected unauthenticated state after logout")
	}
	if service.Token() != "" {
		t.Errorf("Expected token cleared")
	}
	if repo.session != nil {
		t.Errorf("Expected stored session cleared")
	}
}

func TestService_DeleteAccount_ClosesSession(t *testing.T) {
	server, client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "Compte supprimé"}`))
	})
	defer server.Close()

	repo := &fakeSessionRepository{}
	service := NewService(client, repo)
	mustLogin(t, service, repo)

	result := service.DeleteAccount(context.Background())

	if !result.Success {
		t.Fatalf("Expected success, got: %s", result.Message)
	}
	if service.IsAuthenticated() {
		t.Errorf("Expected session to be closed after account deletion")
	}
	if repo.session != nil {
		t.Errorf("Expected stored session cleared")
	}
}

func mustLogin(t *testing.T, service *Service, repo *fakeSessionRepository) {
	t.Helper()
	if err := service.openSession("jwt-abc", &User{ID: 1, Email: "a@b.fr", Name: "Alice"}); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
}
