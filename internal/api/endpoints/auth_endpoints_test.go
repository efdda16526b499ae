package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/middleware"
	"flex-design-backend/internal/config"
	"flex-design-backend/internal/dto"
	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/queue"
	authsvc "flex-design-backend/internal/service/auth"
)

const (
	testSuperAdmin = "filex@flexdesign.academy"
	testPassword   = "Sup3rS3cret!"
)

type testUserRepository struct {
	mu    sync.Mutex
	users map[string]model.UserItem
}

func newTestUserRepository() *testUserRepository {
	return &testUserRepository{users: make(map[string]model.UserItem)}
}

func (m *testUserRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return authsvc.ErrEmailTaken
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *testUserRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, authsvc.ErrNotFound
	}
	return user, nil
}

func (m *testUserRepository) FindUserByEmail(ctx context.Context, email string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.UserItem{}, authsvc.ErrNotFound
}

func (m *testUserRepository) ListUsers(ctx context.Context) ([]model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]model.UserItem, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *testUserRepository) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, authsvc.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			user.Name = v.(string)
		case "avatar":
			user.Avatar = v.(string)
		case "language":
			user.Language = v.(string)
		case "theme":
			user.Theme = v.(string)
		case "role":
			user.Role = v.(model.UserRole)
		case "status":
			user.Status = v.(model.UserStatus)
		default:
			return model.UserItem{}, fmt.Errorf("unexpected field %s", k)
		}
	}
	m.users[userID] = user
	return user, nil
}

func (m *testUserRepository) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return authsvc.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

func fixedTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newTestIssuer(t *testing.T) *internaljwt.Issuer {
	t.Helper()
	issuer, err := internaljwt.NewIssuer("user-secret", "admin-secret", internaljwt.NewMemoryRefreshStore())
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	return issuer
}

func newTestSite(t *testing.T) *config.Site {
	t.Helper()
	site, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default returned error: %v", err)
	}
	return site
}

// newTestServer returns an APIServer whose queue is shut down with the test.
func newTestServer(t *testing.T) *api.APIServer {
	t.Helper()
	queueManager := queue.NewRequestQueueManager(10, 1, nil)
	t.Cleanup(queueManager.Shutdown)
	return api.NewAPIServer(":0", queueManager, nil)
}

func setupAuthHandler(t *testing.T) http.Handler {
	t.Helper()

	issuer := newTestIssuer(t)
	pol := policy.NewAdminPolicy(testSuperAdmin, nil)
	svc := authsvc.NewWithRepository(newTestUserRepository(), issuer, pol, newTestSite(t), fixedTime, nil)
	authEndpoints := NewAuthEndpoints(svc)

	server := newTestServer(t)
	requireUser := middleware.RequireUser(issuer)
	requireAdmin := middleware.RequireAdmin(issuer)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", server.MakeHTTPHandleFunc(authEndpoints.Register))
	mux.HandleFunc("/api/auth/login", server.MakeHTTPHandleFunc(authEndpoints.Login))
	mux.HandleFunc("/api/auth/refresh", server.MakeHTTPHandleFunc(authEndpoints.Refresh))
	mux.HandleFunc("/api/auth/logout", server.MakeHTTPHandleFunc(authEndpoints.Logout))
	mux.HandleFunc("/api/me", server.MakeHTTPHandleFunc(authEndpoints.Me, requireUser))
	mux.HandleFunc("/api/me/preferences", server.MakeHTTPHandleFunc(authEndpoints.Preferences, requireUser))
	mux.HandleFunc("/api/admin/users", server.MakeHTTPHandleFunc(authEndpoints.Users, requireAdmin))
	mux.HandleFunc("/api/admin/users/{id}/ban", server.MakeHTTPHandleFunc(authEndpoints.BanUser, requireAdmin))
	return mux
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if expectedStatus != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}

	return result
}

func TestAuthEndpointsEndToEnd(t *testing.T) {
	handler := setupAuthHandler(t)

	registerResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Jane Client",
		"email":    "Jane@Example.com",
		"password": testPassword,
	}, nil, http.StatusCreated)

	if registerResp.User.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %s", registerResp.User.Email)
	}
	if registerResp.User.Role != string(model.RoleUser) {
		t.Fatalf("expected role USER, got %s", registerResp.User.Role)
	}
	if registerResp.RefreshToken == "" {
		t.Fatal("expected refresh token in register response")
	}

	loginResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "jane@example.com",
		"password": testPassword,
	}, nil, http.StatusOK)

	if loginResp.AccessToken == "" {
		t.Fatal("expected access token in login response")
	}

	meResp := doJSONRequest[dto.UserResponse](t, handler, http.MethodGet, "/api/me", nil, bearer(loginResp.AccessToken), http.StatusOK)
	if meResp.UserID != registerResp.User.UserID {
		t.Fatalf("expected user %s, got %s", registerResp.User.UserID, meResp.UserID)
	}

	refreshResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/refresh", map[string]interface{}{
		"refreshToken": loginResp.RefreshToken,
	}, nil, http.StatusOK)
	if refreshResp.AccessToken == "" {
		t.Fatal("expected access token in refresh response")
	}

	doJSONRequest[ApiMessageResponse](t, handler, http.MethodPost, "/api/auth/logout", map[string]interface{}{
		"refreshToken": loginResp.RefreshToken,
	}, nil, http.StatusOK)

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/auth/refresh", map[string]interface{}{
		"refreshToken": loginResp.RefreshToken,
	}, nil, http.StatusUnauthorized)
}

func TestAuthRegisterRejectsBadInput(t *testing.T) {
	handler := setupAuthHandler(t)

	doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": "Jane", "email": "jane@example.com", "password": testPassword,
	}, nil, http.StatusCreated)

	cases := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"duplicate email", map[string]interface{}{"name": "Jane", "email": "JANE@example.com", "password": testPassword}, http.StatusConflict},
		{"weak password", map[string]interface{}{"name": "Jo", "email": "jo@example.com", "password": "123"}, http.StatusBadRequest},
		{"invalid email", map[string]interface{}{"name": "Jo", "email": "not-an-email", "password": testPassword}, http.StatusBadRequest},
		{"missing name", map[string]interface{}{"email": "jo@example.com", "password": testPassword}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/auth/register", tc.body, nil, tc.status)
		})
	}

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email": "jane@example.com", "password": "wrong-password",
	}, nil, http.StatusUnauthorized)
}

func TestAuthPreferencesUpdate(t *testing.T) {
	handler := setupAuthHandler(t)

	registerResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": "Jane", "email": "jane@example.com", "password": testPassword,
	}, nil, http.StatusCreated)

	resp := doJSONRequest[dto.UserResponse](t, handler, http.MethodPut, "/api/me/preferences", map[string]interface{}{
		"language": "en", "theme": "dark",
	}, bearer(registerResp.AccessToken), http.StatusOK)
	if resp.Language != "en" || resp.Theme != "dark" {
		t.Fatalf("unexpected preferences %+v", resp)
	}

	doJSONRequest[api.ApiError](t, handler, http.MethodPut, "/api/me/preferences", map[string]interface{}{
		"language": "xx",
	}, bearer(registerResp.AccessToken), http.StatusBadRequest)
}

func TestAdminCanBanUser(t *testing.T) {
	handler := setupAuthHandler(t)

	adminResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": "Filex", "email": testSuperAdmin, "password": testPassword,
	}, nil, http.StatusCreated)
	if adminResp.User.Role != string(model.RoleAdmin) {
		t.Fatalf("expected super admin to register as ADMIN, got %s", adminResp.User.Role)
	}

	userResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": "Jane", "email": "jane@example.com", "password": testPassword,
	}, nil, http.StatusCreated)

	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/admin/users", nil, bearer(userResp.AccessToken), http.StatusForbidden)

	users := doJSONRequest[[]dto.UserResponse](t, handler, http.MethodGet, "/api/admin/users", nil, bearer(adminResp.AccessToken), http.StatusOK)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	banned := doJSONRequest[dto.UserResponse](t, handler, http.MethodPost, "/api/admin/users/"+userResp.User.UserID+"/ban", nil, bearer(adminResp.AccessToken), http.StatusOK)
	if banned.Status != string(model.UserStatusBanned) {
		t.Fatalf("expected BANNED, got %s", banned.Status)
	}

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email": "jane@example.com", "password": testPassword,
	}, nil, http.StatusForbidden)

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/admin/users/"+adminResp.User.UserID+"/ban", nil, bearer(adminResp.AccessToken), http.StatusForbidden)
}
