package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	authsvc "flex-design-backend/internal/service/auth"
)

type AuthEndpoints interface {
	Register(http.ResponseWriter, *http.Request) error
	Login(http.ResponseWriter, *http.Request) error
	Refresh(http.ResponseWriter, *http.Request) error
	Logout(http.ResponseWriter, *http.Request) error
	Me(http.ResponseWriter, *http.Request) error
	Preferences(http.ResponseWriter, *http.Request) error
	Users(http.ResponseWriter, *http.Request) error
	DeleteUser(http.ResponseWriter, *http.Request) error
	BanUser(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	service *authsvc.Service
}

func NewAuthEndpoints(service *authsvc.Service) AuthEndpoints {
	return &authEndpoints{service: service}
}

func (h *authEndpoints) Register(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRegister,
	})
}

func (h *authEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *authEndpoints) Refresh(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRefresh,
	})
}

func (h *authEndpoints) Logout(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogout,
	})
}

func (h *authEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:   h.handleMe,
		http.MethodPatch: h.handleUpdateProfile,
	})
}

func (h *authEndpoints) Preferences(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPut: h.handlePreferences,
	})
}

func (h *authEndpoints) Users(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListUsers,
		http.MethodPost: h.handleCreateAdmin,
	})
}

func (h *authEndpoints) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleDeleteUser,
	})
}

func (h *authEndpoints) BanUser(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleBan,
	})
}

func (h *authEndpoints) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req, "register request"); err != nil {
		return err
	}

	result, err := h.service.Register(r.Context(), authsvc.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *authEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req, "login request"); err != nil {
		return err
	}

	result, err := h.service.Login(r.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *authEndpoints) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req, "refresh request"); err != nil {
		return err
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *authEndpoints) handleLogout(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req, "logout request"); err != nil {
		return err
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Logged out"})
}

func (h *authEndpoints) handleMe(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	user, err := h.service.Me(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *authEndpoints) handleUpdateProfile(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req, "profile request"); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(r.Context(), identity, authsvc.ProfileParams{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *authEndpoints) handlePreferences(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.PreferencesRequest
	if err := decodeJSON(r, &req, "preferences request"); err != nil {
		return err
	}

	user, err := h.service.UpdatePreferences(r.Context(), identity, authsvc.PreferencesParams{
		Language: req.Language,
		Theme:    req.Theme,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *authEndpoints) handleListUsers(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	users, err := h.service.ListUsers(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *authEndpoints) handleCreateAdmin(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.CreateAdminRequest
	if err := decodeJSON(r, &req, "create admin request"); err != nil {
		return err
	}

	user, err := h.service.CreateAdmin(r.Context(), &identity, authsvc.CreateAdminParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *authEndpoints) handleDeleteUser(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	userID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(r.Context(), identity, userID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "User deleted"})
}

func (h *authEndpoints) handleBan(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	userID, err := pathID(r)
	if err != nil {
		return err
	}

	user, err := h.service.ToggleBan(r.Context(), identity, userID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *authEndpoints) serviceError(err error) error {
	var svcErr *authsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("auth service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toAuthResponse(result authsvc.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresAt:    result.Tokens.ExpiresAt,
		User:         toUserResponse(result.User),
	}
}

func toUserResponse(user model.UserItem) dto.UserResponse {
	return dto.UserResponse{
		UserID:   user.UserID,
		Name:     user.Name,
		Email:    user.Email,
		Avatar:   user.Avatar,
		Role:     string(user.Role),
		Status:   string(user.Status),
		Language: user.Language,
		Theme:    user.Theme,
		JoinedAt: user.JoinedAt,
	}
}
