// Package client is a typed Go client for the CrackBano API together with a
// Synchronizer that keeps one session view consistent with the server
// across optimistic edits.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// ErrUnauthorized is returned for any 401. The stored token is cleared
// before it is returned, so the caller has to log in again.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("client: %d %s: %s (field %s)", e.Status, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("client: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one API base URL. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL, e.g. "http://localhost:8000".
func New(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AuthResponse is the body of register and login.
type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type GenerateRequest struct {
	Role              string `json:"role"`
	Experience        string `json:"experience"`
	TopicsToFocus     string `json:"topicsToFocus"`
	NumberOfQuestions int    `json:"numQuestions,omitempty"`
	Difficulty        string `json:"difficulty,omitempty"`
}

type GenerateResponse struct {
	Questions []model.QuestionInput `json:"questions"`
	Model     string                `json:"model"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
	Model       string `json:"model"`
}

type CreateSessionRequest struct {
	Title         string                `json:"title,omitempty"`
	Role          string                `json:"role"`
	Experience    string                `json:"experience"`
	TopicsToFocus string                `json:"topicsToFocus"`
	Description   string                `json:"description,omitempty"`
	Questions     []model.QuestionInput `json:"questions"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Login stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) GenerateQuestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var res GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/generate-questions", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ExplainConcept(ctx context.Context, concept, role, experience string) (*ExplainResponse, error) {
	var res ExplainResponse
	body := map[string]string{"concept": concept, "role": role, "experience": experience}
	if err := c.do(ctx, http.MethodPost, "/api/ai/explain-concept", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*model.Session, error) {
	var res struct {
		Session model.Session `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/create", req, &res); err != nil {
		return nil, err
	}
	return &res.Session, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions/my-sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddQuestions(ctx context.Context, sessionID string, qs []model.QuestionInput) ([]model.Question, error) {
	var res struct {
		Questions []model.Question `json:"questions"`
	}
	body := map[string]any{"sessionId": sessionID, "questions": qs}
	if err := c.do(ctx, http.MethodPost, "/api/questions/add", body, &res); err != nil {
		return nil, err
	}
	return res.Questions, nil
}

func (c *Client) TogglePin(ctx context.Context, questionID string) (*model.Question, error) {
	return c.questionMutation(ctx, "/api/questions/"+url.PathEscape(questionID)+"/pin", nil)
}

func (c *Client) UpdateNote(ctx context.Context, questionID, note string) (*model.Question, error) {
	return c.questionMutation(ctx, "/api/questions/"+url.PathEscape(questionID)+"/notes", map[string]string{"note": note})
}

func (c *Client) PinnedQuestions(ctx context.Context) ([]model.Question, error) {
	var res struct {
		PinnedQuestions []model.Question `json:"pinnedQuestions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/questions/pinned", nil, &res); err != nil {
		return nil, err
	}
	return res.PinnedQuestions, nil
}

func (c *Client) questionMutation(ctx context.Context, path string, body any) (*model.Question, error) {
	var res struct {
		Question model.Question `json:"question"`
	}
	if err := c.do(ctx, http.MethodPatch, path, body, &res); err != nil {
		return nil, err
	}
	return &res.Question, nil
}

// do sends one JSON request and decodes a 2xx body into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.SetToken("")
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Field = body.Field
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
