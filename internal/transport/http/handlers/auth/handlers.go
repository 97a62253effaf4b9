package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"leavedesk/internal/domain/auth"
	"leavedesk/internal/domain/core"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	Core   *core.Service
	Secret string
}

func NewHandler(coreSvc *core.Service, secret string) *Handler {
	return &Handler{Core: coreSvc, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Core.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"role":      user.Role,
		},
	}, requestID)
}

// HandleCheck confirms the bearer token is still valid and echoes the
// principal it carries.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	api.Success(w, map[string]any{
		"id":    user.UserID,
		"email": user.Email,
		"role":  user.Role,
	}, requestID)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employee, err := h.Core.GetEmployee(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "profile not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, employee, requestID)
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Core.UpdateProfile(r.Context(), user.UserID, payload.FirstName, payload.LastName); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "profile_update_failed", "failed to update profile", requestID)
		return
	}
	api.Success(w, map[string]any{"updated": true}, requestID)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	err := h.Core.UpdatePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		var verr *core.ValidationError
		switch {
		case errors.As(err, &verr):
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Message}})
		case errors.Is(err, core.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "password_update_failed", "failed to update password", requestID)
		}
		return
	}
	api.Success(w, map[string]any{"updated": true}, requestID)
}
