package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flex-design-backend/utils"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

func roleChar(role Role) string {
	switch role {
	case RoleUser:
		return "1"
	case RoleAdmin:
		return "2"
	}
	return ""
}

func roleFromChar(c string) (Role, bool) {
	switch c {
	case "1":
		return RoleUser, true
	case "2":
		return RoleAdmin, true
	}
	return 0, false
}

// Issuer signs access tokens with a per-role secret and keeps refresh tokens
// in a RefreshStore. Every token carries its role as a trailing character.
type Issuer struct {
	secrets map[Role][]byte
	store   RefreshStore
	now     func() time.Time
}

func NewIssuer(userSecret, adminSecret string, store RefreshStore) (*Issuer, error) {
	if userSecret == "" || adminSecret == "" {
		return nil, fmt.Errorf("jwt: user and admin secrets are required")
	}
	if userSecret == adminSecret {
		return nil, fmt.Errorf("jwt: user and admin secrets must differ")
	}
	if store == nil {
		return nil, fmt.Errorf("jwt: refresh store is required")
	}
	return &Issuer{
		secrets: map[Role][]byte{
			RoleUser:  []byte(userSecret),
			RoleAdmin: []byte(adminSecret),
		},
		store: store,
		now:   time.Now,
	}, nil
}

// SetClock replaces the time source used for expiry.
func (i *Issuer) SetClock(now func() time.Time) {
	if now != nil {
		i.now = now
	}
}

func (i *Issuer) CreateToken(user User, role Role, validUntil int64) (string, error) {
	secret, ok := i.secrets[role]
	if !ok {
		return "", fmt.Errorf("invalid role specified")
	}

	if validUntil == 0 {
		validUntil = i.now().Add(AccessTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"id":    user.Id,
		"email": user.Email,
		"name":  user.Name,
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString + roleChar(role), nil
}

// CreateAccessToken issues an access token without a refresh token.
func (i *Issuer) CreateAccessToken(user User, role Role) (TokenResponse, error) {
	expiresAt := i.now().Add(AccessTokenTTL).Unix()
	accessToken, err := i.CreateToken(user, role, expiresAt)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (i *Issuer) CreateTokenWithRefresh(ctx context.Context, user User, role Role) (TokenResponse, error) {
	expiresAt := i.now().Add(AccessTokenTTL).Unix()
	accessToken, err := i.CreateToken(user, role, expiresAt)
	if err != nil {
		return TokenResponse{}, err
	}

	refreshTokenRaw := utils.CreateToken()
	if refreshTokenRaw == "" {
		return TokenResponse{}, fmt.Errorf("generate refresh token")
	}

	userData, err := json.Marshal(user)
	if err != nil {
		return TokenResponse{}, err
	}
	if err := i.store.Set(ctx, refreshTokenRaw, userData, RefreshTokenTTL); err != nil {
		return TokenResponse{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw + roleChar(role),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken verifies an access token. The role comes from the trailing
// character and selects the secret the signature is checked against.
func (i *Issuer) ParseToken(tokenString string) (Claims, error) {
	if len(tokenString) < 2 {
		return Claims{}, ErrInvalidToken
	}

	role, ok := roleFromChar(tokenString[len(tokenString)-1:])
	if !ok {
		return Claims{}, fmt.Errorf("%w: unknown role character", ErrInvalidToken)
	}
	tokenString = tokenString[:len(tokenString)-1]
	secret := i.secrets[role]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: claims of unexpected type", ErrInvalidToken)
	}

	exp, _ := mapClaims["exp"].(float64)
	if int64(exp) < i.now().Unix() {
		return Claims{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	id, _ := mapClaims["id"].(string)
	email, _ := mapClaims["email"].(string)
	name, _ := mapClaims["name"].(string)
	if id == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Claims{
		User:      User{Id: id, Email: email, Name: name},
		Role:      role,
		ExpiresAt: int64(exp),
	}, nil
}

// LookupRefresh returns the user a refresh token was issued to and extends
// its lifetime.
func (i *Issuer) LookupRefresh(ctx context.Context, refreshToken string) (User, error) {
	raw, err := splitRefresh(refreshToken)
	if err != nil {
		return User{}, err
	}

	val, err := i.store.Get(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return User{}, ErrInvalidRefreshToken
		}
		return User{}, err
	}

	var user User
	if err := json.Unmarshal(val, &user); err != nil || user.Id == "" {
		return User{}, fmt.Errorf("%w: invalid token data", ErrInvalidRefreshToken)
	}

	if err := i.store.Touch(ctx, raw, RefreshTokenTTL); err != nil {
		return User{}, fmt.Errorf("failed to update refresh token expiration: %w", err)
	}

	return user, nil
}

func (i *Issuer) Revoke(ctx context.Context, refreshToken string) error {
	raw, err := splitRefresh(refreshToken)
	if err != nil {
		return err
	}
	return i.store.Delete(ctx, raw)
}

func splitRefresh(refreshToken string) (string, error) {
	if len(refreshToken) < 2 {
		return "", ErrInvalidRefreshToken
	}
	if _, ok := roleFromChar(refreshToken[len(refreshToken)-1:]); !ok {
		return "", fmt.Errorf("%w: invalid role character", ErrInvalidRefreshToken)
	}
	return refreshToken[:len(refreshToken)-1], nil
}
