package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/database"
	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"

	"github.com/google/uuid"
)

const minPasswordLength = 6

// TokenIssuer issues and revokes the tokens handed to clients.
type TokenIssuer interface {
	CreateAccessToken(user internaljwt.User, role internaljwt.Role) (internaljwt.TokenResponse, error)
	CreateTokenWithRefresh(ctx context.Context, user internaljwt.User, role internaljwt.Role) (internaljwt.TokenResponse, error)
	LookupRefresh(ctx context.Context, refreshToken string) (internaljwt.User, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type Service struct {
	repo                 Repository
	tokens               TokenIssuer
	policy               *policy.AdminPolicy
	site                 *config.Site
	now                  func() time.Time
	log                  *logger.Logger
	defaultAdminPassword string
}

func New(db *database.Database, tokens TokenIssuer, pol *policy.AdminPolicy, site *config.Site, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), tokens, pol, site, nil, log)
}

func NewWithRepository(repo Repository, tokens TokenIssuer, pol *policy.AdminPolicy, site *config.Site, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		policy: pol,
		site:   site,
		now:    now,
		log:    log.With("service", "AuthService"),
	}
}

// SetDefaultAdminPassword sets the password CreateAdmin uses when none is given.
func (s *Service) SetDefaultAdminPassword(password string) {
	s.defaultAdminPassword = password
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	password := params.Password

	if name == "" || email == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if !validEmail(email) {
		return AuthResult{}, newError(ErrorCodeValidation, "invalid email address", nil)
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, newError(ErrorCodeWeakPassword, "password must be at least 6 characters", nil)
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return AuthResult{}, err
	}

	user, err := s.newUser(name, email, password, s.policy.RoleFor(email, ""))
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, newError(ErrorCodeEmailInUse, "email already registered", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	s.log.Info("User registered", "user_id", user.UserID, "role", user.Role)
	return s.issue(ctx, user)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeInvalidCredentials, "invalid email or password", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to lookup user", err)
	}
	if !internaljwt.ValidatePassword(user.PasswordHash, params.Password) {
		return AuthResult{}, newError(ErrorCodeInvalidCredentials, "invalid email or password", nil)
	}
	if user.IsBanned() {
		return AuthResult{}, newError(ErrorCodeBanned, "account is banned", nil)
	}

	user, err = s.healRole(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(ctx, user)
}

// Refresh issues a new access token for a refresh token. The account is
// reloaded so bans and role changes apply immediately.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "refreshToken is required", nil)
	}

	tokenUser, err := s.tokens.LookupRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, internaljwt.ErrInvalidRefreshToken) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid refresh token", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to read refresh token", err)
	}

	user, err := s.repo.GetUser(ctx, tokenUser.Id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = s.tokens.Revoke(ctx, refreshToken)
			return AuthResult{}, newError(ErrorCodeUnauthorized, "account no longer exists", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to load user", err)
	}
	if user.IsBanned() {
		_ = s.tokens.Revoke(ctx, refreshToken)
		return AuthResult{}, newError(ErrorCodeBanned, "account is banned", nil)
	}

	user, err = s.healRole(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	tokens, err := s.tokens.CreateAccessToken(tokenUserFor(user), jwtRole(user.Role))
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return newError(ErrorCodeValidation, "refreshToken is required", nil)
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil && !errors.Is(err, internaljwt.ErrInvalidRefreshToken) {
		return newError(ErrorCodeInternal, "failed to revoke token", err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, identity policy.Identity) (model.UserItem, error) {
	return s.loadUser(ctx, identity.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, identity policy.Identity, params ProfileParams) (model.UserItem, error) {
	fields := map[string]interface{}{}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return model.UserItem{}, newError(ErrorCodeValidation, "name cannot be empty", nil)
		}
		fields["name"] = name
	}
	if params.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*params.Avatar)
	}
	if len(fields) == 0 {
		return s.loadUser(ctx, identity.UserID)
	}
	return s.update(ctx, identity.UserID, fields)
}

// UpdatePreferences stores the caller's language and theme. Empty values
// leave the stored preference unchanged.
func (s *Service) UpdatePreferences(ctx context.Context, identity policy.Identity, params PreferencesParams) (model.UserItem, error) {
	fields := map[string]interface{}{}
	if lang := strings.ToLower(strings.TrimSpace(params.Language)); lang != "" {
		if !s.site.SupportsLanguage(lang) {
			return model.UserItem{}, newError(ErrorCodeValidation, "unsupported language", nil)
		}
		fields["language"] = lang
	}
	if theme := strings.ToLower(strings.TrimSpace(params.Theme)); theme != "" {
		if !s.site.SupportsTheme(theme) {
			return model.UserItem{}, newError(ErrorCodeValidation, "unsupported theme", nil)
		}
		fields["theme"] = theme
	}
	if len(fields) == 0 {
		return s.loadUser(ctx, identity.UserID)
	}
	return s.update(ctx, identity.UserID, fields)
}

func (s *Service) healRole(ctx context.Context, user model.UserItem) (model.UserItem, error) {
	role := s.policy.RoleFor(user.Email, user.Role)
	if role == user.Role {
		return user, nil
	}
	updated, err := s.repo.UpdateUser(ctx, user.UserID, map[string]interface{}{"role": role})
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to update role", err)
	}
	s.log.Info("User role corrected", "user_id", user.UserID, "from", user.Role, "to", role)
	return updated, nil
}

func (s *Service) issue(ctx context.Context, user model.UserItem) (AuthResult, error) {
	tokens, err := s.tokens.CreateTokenWithRefresh(ctx, tokenUserFor(user), jwtRole(user.Role))
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *Service) newUser(name, email, password string, role model.UserRole) (model.UserItem, error) {
	hash, err := internaljwt.HashPassword(password)
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to prepare user", err)
	}
	return model.UserItem{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       model.UserStatusActive,
		Language:     s.site.DefaultLanguage,
		Theme:        s.site.DefaultTheme,
		JoinedAt:     model.FormatTime(s.now()),
	}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return newError(ErrorCodeEmailInUse, "email already registered", nil)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return newError(ErrorCodeInternal, "failed to lookup user", err)
	}
}

func (s *Service) loadUser(ctx context.Context, userID string) (model.UserItem, error) {
	if strings.TrimSpace(userID) == "" {
		return model.UserItem{}, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to load user", err)
	}
	return user, nil
}

func (s *Service) update(ctx context.Context, userID string, fields map[string]interface{}) (model.UserItem, error) {
	user, err := s.repo.UpdateUser(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to update user", err)
	}
	return user, nil
}

func tokenUserFor(user model.UserItem) internaljwt.User {
	return internaljwt.User{Id: user.UserID, Email: user.Email, Name: user.Name}
}

func jwtRole(role model.UserRole) internaljwt.Role {
	if role == model.RoleAdmin {
		return internaljwt.RoleAdmin
	}
	return internaljwt.RoleUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
