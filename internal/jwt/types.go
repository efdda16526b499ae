package jwt

import "time"

// Role selects the signing secret and the trailing marker of a token.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 24 * 30 * time.Hour
)

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims is the verified content of an access token.
type Claims struct {
	User      User
	Role      Role
	ExpiresAt int64
}
