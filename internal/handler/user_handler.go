package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-backend/internal/middleware"
	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type UserHandler struct {
	users  *service.UserService
	tokens *service.TokenService
}

func NewUserHandler(users *service.UserService, tokens *service.TokenService) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegistrationRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.users.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.RegistrationResponse{
		Success:         true,
		Message:         "Please check your email: " + payload.Email + " to activate your account",
		ActivationToken: ticket,
	})
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ActivationRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.users.Activate(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{
		Success: true,
		Message: "Account activated successfully",
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, access, refresh, err := h.users.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, access, refresh)
	writeJSON(w, http.StatusOK, model.SessionResponse{
		Success:     true,
		User:        user,
		AccessToken: access,
	})
}

func (h *UserHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SocialAuthRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, access, refresh, err := h.users.SocialAuth(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, access, refresh)
	writeJSON(w, http.StatusOK, model.SessionResponse{
		Success:     true,
		User:        user,
		AccessToken: access,
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	if err := h.users.Logout(r.Context(), identity.UserID); err != nil {
		writeError(w, err)
		return
	}

	for _, cookie := range h.tokens.ExpiredCookies() {
		http.SetCookie(w, cookie)
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// Refresh reads the refresh token from its cookie only; it never falls back
// to the Authorization header.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, apierror.Unauthorized("Could not refresh token"))
		return
	}

	_, access, refresh, err := h.users.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, access, refresh)
	writeJSON(w, http.StatusOK, model.RefreshResponse{
		Success:     true,
		AccessToken: access,
	})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: user})
}

func (h *UserHandler) UpdateUserData(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.UpdateUserDataRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateUserData(r.Context(), user.ID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: updated})
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.UpdatePasswordRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdatePassword(r.Context(), user.ID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: updated})
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.UpdateAvatarRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: updated})
}

func (h *UserHandler) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.AllUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UsersResponse{Success: true, Users: users})
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.UpdateUserRoleRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateRole(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: updated})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("User id is required"))
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Success: true,
		Message: "User deleted successfully",
	})
}

func (h *UserHandler) setSessionCookies(w http.ResponseWriter, access string, refresh string) {
	http.SetCookie(w, h.tokens.AccessCookie(access))
	http.SetCookie(w, h.tokens.RefreshCookie(refresh))
}
