package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/model"
)

func newTestIssuer(t *testing.T) *internaljwt.Issuer {
	t.Helper()
	issuer, err := internaljwt.NewIssuer("user-secret", "admin-secret", internaljwt.NewMemoryRefreshStore())
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	return issuer
}

func tokenFor(t *testing.T, issuer *internaljwt.Issuer, role internaljwt.Role) string {
	t.Helper()
	token, err := issuer.CreateToken(internaljwt.User{Id: "u1", Email: "a@b.c", Name: "A"}, role, 0)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}
	return token
}

func TestRequireAdmin(t *testing.T) {
	issuer := newTestIssuer(t)
	var seen model.UserRole
	handler := RequireAdmin(issuer)(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		seen = identity.Role
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"user token", "Bearer " + tokenFor(t, issuer, internaljwt.RoleUser), http.StatusForbidden},
		{"admin token", "Bearer " + tokenFor(t, issuer, internaljwt.RoleAdmin), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
	if seen != model.RoleAdmin {
		t.Fatalf("expected admin identity, got %q", seen)
	}
}

func TestOptionalIdentity(t *testing.T) {
	issuer := newTestIssuer(t)
	var found bool
	handler := OptionalIdentity(issuer)(func(w http.ResponseWriter, r *http.Request) {
		_, found = IdentityFromContext(r.Context())
	})

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if found {
		t.Fatal("anonymous request must not carry an identity")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, internaljwt.RoleUser))
	handler(httptest.NewRecorder(), req)
	if !found {
		t.Fatal("expected identity for a valid token")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(DefaultCORSConfig([]string{"https://flexdesign.academy"}))(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://flexdesign.academy")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "https://flexdesign.academy" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", rec.Code)
	}
}
