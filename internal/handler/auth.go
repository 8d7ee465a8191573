package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YadavAkhileshh/CrackBano/internal/auth"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/service"
)

// Authenticator is the part of service.AuthService the handlers use.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	auth   Authenticator
	errors *Errors
	logger *slog.Logger
}

func NewAuthHandler(a Authenticator, errs *Errors, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, errors: errs, logger: logger}
}

type authResponse struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Success bool        `json:"success"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and returns a bearer token for it.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: res.User, Token: res.Token, Success: true})
}

// HandleLogin exchanges email and password for a bearer token.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: res.User, Token: res.Token, Success: true})
}

// HandleProfile returns the authenticated user.
//
// HTTP: GET /api/auth/profile
// Auth: required
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Warn("profile lookup failed", slog.String("userID", userID))
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// callerID reads the user id RequireAuth stored. Routes are only mounted
// behind RequireAuth, so a miss means a wiring bug; it still answers 401.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return "", false
	}
	return userID, true
}
