package auth

import (
	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

type ErrorCode string

const (
	ErrorCodeValidation         ErrorCode = "validation_error"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeForbidden          ErrorCode = "forbidden"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeInternal           ErrorCode = "internal_error"
	ErrorCodeInvalidCredentials ErrorCode = "invalid_credentials"
	ErrorCodeEmailInUse         ErrorCode = "email_in_use"
	ErrorCodeWeakPassword       ErrorCode = "weak_password"
	ErrorCodeBanned             ErrorCode = "banned"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type ProfileParams struct {
	Name   *string
	Avatar *string
}

type PreferencesParams struct {
	Language string
	Theme    string
}

type CreateAdminParams struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User   model.UserItem
	Tokens internaljwt.TokenResponse
}

// IdentityFor is the identity an access token for user carries.
func IdentityFor(user model.UserItem) policy.Identity {
	return policy.Identity{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}
}
