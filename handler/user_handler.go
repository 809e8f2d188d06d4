package handler

import (
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
)

type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// Register creates a new user account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.users.Register(req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Login verifies credentials and returns an access/refresh token pair.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	tokens, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error logging in", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokens)
	return nil
}

// Refresh exchanges a refresh token for a new token pair.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	tokens, err := h.auth.RefreshTokens(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error refreshing token", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokens)
	return nil
}
