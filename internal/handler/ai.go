package handler

import (
	"context"
	"net/http"

	"github.com/YadavAkhileshh/CrackBano/internal/ai"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// Generator is the part of ai.Gateway the handlers use.
type Generator interface {
	Generate(ctx context.Context, params ai.GenerateParams) (*ai.Generation, error)
	Explain(ctx context.Context, params ai.ExplainParams) (*ai.Explanation, error)
}

// AIHandler serves /api/ai. Both routes are rate limited per user.
type AIHandler struct {
	gen    Generator
	errors *Errors
}

func NewAIHandler(gen Generator, errs *Errors) *AIHandler {
	return &AIHandler{gen: gen, errors: errs}
}

type generateRequest struct {
	Role              string `json:"role"`
	Experience        string `json:"experience"`
	TopicsToFocus     string `json:"topicsToFocus"`
	NumberOfQuestions int    `json:"numQuestions"`
	Difficulty        string `json:"difficulty"`
}

type generateResponse struct {
	Questions []model.QuestionInput `json:"questions"`
	Model     string                `json:"model"`
	Success   bool                  `json:"success"`
}

type explainRequest struct {
	Concept    string `json:"concept"`
	Role       string `json:"role"`
	Experience string `json:"experience"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
	Model       string `json:"model"`
	Success     bool   `json:"success"`
}

// HandleGenerateQuestions returns numQuestions questions. Provider
// outages still answer 200 from the local bank.
//
// HTTP: POST /api/ai/generate-questions
func (h *AIHandler) HandleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	gen, err := h.gen.Generate(r.Context(), ai.GenerateParams{
		Role:          req.Role,
		Experience:    req.Experience,
		TopicsToFocus: req.TopicsToFocus,
		Count:         req.NumberOfQuestions,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Questions: gen.Questions, Model: gen.Model, Success: true})
}

// HandleExplainConcept returns a markdown explanation of one concept.
//
// HTTP: POST /api/ai/explain-concept
func (h *AIHandler) HandleExplainConcept(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req explainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	exp, err := h.gen.Explain(r.Context(), ai.ExplainParams{
		Concept:    req.Concept,
		Role:       req.Role,
		Experience: req.Experience,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{Explanation: exp.Explanation, Model: exp.Model, Success: true})
}
