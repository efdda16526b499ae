package jwt

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer("user-secret", "admin-secret", NewMemoryRefreshStore())
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	return issuer
}

func TestCreateAndParseTokenPerRole(t *testing.T) {
	issuer := newTestIssuer(t)
	user := User{Id: "u1", Email: "a@b.c", Name: "Amal"}

	for _, role := range []Role{RoleUser, RoleAdmin} {
		token, err := issuer.CreateToken(user, role, 0)
		if err != nil {
			t.Fatalf("CreateToken returned error: %v", err)
		}
		claims, err := issuer.ParseToken(token)
		if err != nil {
			t.Fatalf("ParseToken returned error: %v", err)
		}
		if claims.Role != role || claims.User != user {
			t.Fatalf("unexpected claims %+v for role %d", claims, role)
		}
	}
}

func TestParseTokenRejectsForgedRoleSuffix(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.CreateToken(User{Id: "u1"}, RoleUser, 0)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	forged := token[:len(token)-1] + "2"
	if _, err := issuer.ParseToken(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for forged suffix, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t)
	past := time.Now().Add(-time.Hour).Unix()

	token, err := issuer.CreateToken(User{Id: "u1"}, RoleUser, past)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}
	if _, err := issuer.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestRefreshLifecycle(t *testing.T) {
	issuer := newTestIssuer(t)
	ctx := context.Background()
	user := User{Id: "u1", Email: "a@b.c", Name: "Amal"}

	tokens, err := issuer.CreateTokenWithRefresh(ctx, user, RoleUser)
	if err != nil {
		t.Fatalf("CreateTokenWithRefresh returned error: %v", err)
	}

	got, err := issuer.LookupRefresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("LookupRefresh returned error: %v", err)
	}
	if got != user {
		t.Fatalf("unexpected refresh user %+v", got)
	}

	if err := issuer.Revoke(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := issuer.LookupRefresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after revoke, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !ValidatePassword(hash, "secret1") {
		t.Fatal("expected password to validate")
	}
	if ValidatePassword(hash, "secret2") {
		t.Fatal("expected wrong password to fail")
	}
}
