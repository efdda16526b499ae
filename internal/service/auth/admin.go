package auth

import (
	"context"
	"errors"
	"sort"
	"strings"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

func (s *Service) ListUsers(ctx context.Context, admin policy.Identity) ([]model.UserItem, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list users", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].JoinedAt > users[j].JoinedAt
	})
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, admin policy.Identity, userID string) error {
	target, err := s.manageable(ctx, admin, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, target.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "user not found", err)
		}
		return newError(ErrorCodeInternal, "failed to delete user", err)
	}
	s.log.Info("User deleted", "user_id", target.UserID, "admin_id", admin.UserID)
	return nil
}

// ToggleBan flips the account between ACTIVE and BANNED.
func (s *Service) ToggleBan(ctx context.Context, admin policy.Identity, userID string) (model.UserItem, error) {
	target, err := s.manageable(ctx, admin, userID)
	if err != nil {
		return model.UserItem{}, err
	}
	status := model.UserStatusBanned
	if target.IsBanned() {
		status = model.UserStatusActive
	}
	updated, err := s.update(ctx, target.UserID, map[string]interface{}{"status": status})
	if err != nil {
		return model.UserItem{}, err
	}
	s.log.Info("User ban toggled", "user_id", target.UserID, "status", status, "admin_id", admin.UserID)
	return updated, nil
}

// CreateAdmin creates an account with the ADMIN role. actor is nil when the
// call comes from the operator CLI.
func (s *Service) CreateAdmin(ctx context.Context, actor *policy.Identity, params CreateAdminParams) (model.UserItem, error) {
	if actor != nil && !actor.IsAdmin() {
		return model.UserItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}

	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	password := params.Password
	if password == "" {
		password = s.defaultAdminPassword
	}

	if name == "" || email == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if !validEmail(email) {
		return model.UserItem{}, newError(ErrorCodeValidation, "invalid email address", nil)
	}
	if password == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "password is required", nil)
	}
	if len(password) < minPasswordLength {
		return model.UserItem{}, newError(ErrorCodeWeakPassword, "password must be at least 6 characters", nil)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return model.UserItem{}, err
	}

	user, err := s.newUser(name, email, password, model.RoleAdmin)
	if err != nil {
		return model.UserItem{}, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return model.UserItem{}, newError(ErrorCodeEmailInUse, "email already registered", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	s.log.Info("Admin account created", "user_id", user.UserID)
	return user, nil
}

func (s *Service) manageable(ctx context.Context, admin policy.Identity, userID string) (model.UserItem, error) {
	if !admin.IsAdmin() {
		return model.UserItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "userId is required", nil)
	}
	target, err := s.loadUser(ctx, userID)
	if err != nil {
		return model.UserItem{}, err
	}
	if !s.policy.CanManage(admin, target) {
		return model.UserItem{}, newError(ErrorCodeForbidden, "this account cannot be managed by you", nil)
	}
	return target, nil
}
