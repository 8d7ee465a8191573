package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/service"
)

type SessionService interface {
	Create(ctx context.Context, owner string, in service.CreateSessionInput) (*model.Session, error)
	List(ctx context.Context, owner string) ([]model.Session, error)
	Get(ctx context.Context, owner, id string) (*model.Session, error)
	Delete(ctx context.Context, owner, id string) error
}

// SessionHandler serves /api/sessions.
type SessionHandler struct {
	sessions SessionService
	errors   *Errors
}

func NewSessionHandler(sessions SessionService, errs *Errors) *SessionHandler {
	return &SessionHandler{sessions: sessions, errors: errs}
}

type createSessionRequest struct {
	Title         string                `json:"title"`
	Role          string                `json:"role"`
	Experience    string                `json:"experience"`
	TopicsToFocus string                `json:"topicsToFocus"`
	Description   string                `json:"description"`
	Questions     []model.QuestionInput `json:"questions"`
}

type sessionCreatedResponse struct {
	Message string         `json:"message"`
	Session *model.Session `json:"session"`
	Success bool           `json:"success"`
}

type messageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// HandleCreate stores a new session with its initial questions.
//
// HTTP: POST /api/sessions/create
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	session, err := h.sessions.Create(r.Context(), owner, service.CreateSessionInput{
		Title:         req.Title,
		Role:          req.Role,
		Experience:    req.Experience,
		TopicsToFocus: req.TopicsToFocus,
		Description:   req.Description,
		Questions:     req.Questions,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionCreatedResponse{
		Message: "Session created successfully",
		Session: session,
		Success: true,
	})
}

// HandleList returns the caller's sessions as a bare array.
//
// HTTP: GET /api/sessions/my-sessions
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	sessions, err := h.sessions.List(r.Context(), owner)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HandleGet returns one session with its questions, pinned first.
//
// HTTP: GET /api/sessions/{id}
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	session, err := h.sessions.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleDelete removes a session and its questions.
//
// HTTP: DELETE /api/sessions/{id}
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Session deleted successfully", Success: true})
}
