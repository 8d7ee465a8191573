package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

type QuestionService interface {
	Add(ctx context.Context, owner, sessionID string, qs []model.QuestionInput) ([]model.Question, error)
	TogglePin(ctx context.Context, owner, id string) (*model.Question, error)
	UpdateNote(ctx context.Context, owner, id, note string) (*model.Question, error)
	ListPinned(ctx context.Context, owner string) ([]model.Question, error)
}

// QuestionHandler serves /api/questions.
type QuestionHandler struct {
	questions QuestionService
	errors    *Errors
}

func NewQuestionHandler(questions QuestionService, errs *Errors) *QuestionHandler {
	return &QuestionHandler{questions: questions, errors: errs}
}

type addQuestionsRequest struct {
	SessionID string                `json:"sessionId"`
	Questions []model.QuestionInput `json:"questions"`
}

type questionsAddedResponse struct {
	Message   string           `json:"message"`
	Questions []model.Question `json:"questions"`
	Success   bool             `json:"success"`
}

type questionResponse struct {
	Message  string          `json:"message"`
	Question *model.Question `json:"question"`
	Success  bool            `json:"success"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type pinnedResponse struct {
	PinnedQuestions []model.Question `json:"pinnedQuestions"`
	Success         bool             `json:"success"`
}

// HandleAdd appends questions to one of the caller's sessions.
//
// HTTP: POST /api/questions/add
func (h *QuestionHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	var req addQuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	created, err := h.questions.Add(r.Context(), owner, req.SessionID, req.Questions)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, questionsAddedResponse{
		Message:   "Questions added successfully",
		Questions: created,
		Success:   true,
	})
}

// HandleTogglePin flips a question's pinned flag.
//
// HTTP: PATCH /api/questions/{id}/pin
func (h *QuestionHandler) HandleTogglePin(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	q, err := h.questions.TogglePin(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	msg := "Question unpinned successfully"
	if q.IsPinned {
		msg = "Question pinned successfully"
	}
	writeJSON(w, http.StatusOK, questionResponse{Message: msg, Question: q, Success: true})
}

// HandleUpdateNote sets or clears a question's note. A missing "note"
// field clears it.
//
// HTTP: PATCH /api/questions/{id}/notes
func (h *QuestionHandler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	q, err := h.questions.UpdateNote(r.Context(), owner, chi.URLParam(r, "id"), req.Note)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{
		Message:  "Question note updated successfully",
		Question: q,
		Success:  true,
	})
}

// HandleListPinned returns the caller's pinned questions.
//
// HTTP: GET /api/questions/pinned
func (h *QuestionHandler) HandleListPinned(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	qs, err := h.questions.ListPinned(r.Context(), owner)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pinnedResponse{PinnedQuestions: qs, Success: true})
}
