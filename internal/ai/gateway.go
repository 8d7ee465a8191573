package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 20

	// DefaultProviderTimeout bounds a single provider call.
	DefaultProviderTimeout = 30 * time.Second

	// ExplanationLabel is the model label for canned and template
	// explanations.
	ExplanationLabel = "Enhanced Fallback System"
)

// Tier labels for local content. Provider tiers use Provider.Name.
const (
	TierBank     = "bank"
	TierCanned   = "canned"
	TierTemplate = "template"
)

const (
	opGenerate = "generate"
	opExplain  = "explain"
)

// GenerateParams is a generate-questions request as received from a client.
type GenerateParams struct {
	Role          string
	Experience    string
	TopicsToFocus string
	Count         int
	Difficulty    string
}

// Generation is the answer to a generate-questions request. Questions always
// has exactly the requested count.
type Generation struct {
	Questions []model.QuestionInput
	Model     string
	Tier      string
}

type ExplainParams struct {
	Concept    string
	Role       string
	Experience string
}

type Explanation struct {
	Explanation string
	Model       string
	Tier        string
}

type generateRequest struct {
	role       string
	experience string
	topics     []string
	count      int
	difficulty model.Difficulty
}

type explainRequest struct {
	concept    string
	role       string
	experience string
}

func (p GenerateParams) normalize() (generateRequest, error) {
	req := generateRequest{
		role:       strings.TrimSpace(p.Role),
		experience: strings.TrimSpace(p.Experience),
		topics:     model.SplitTopics(p.TopicsToFocus),
		count:      p.Count,
	}
	if req.count == 0 {
		req.count = DefaultQuestionCount
	}
	if req.count < 1 || req.count > MaxQuestionCount {
		return req, apperror.ValidationFailed("numQuestions",
			fmt.Sprintf("numQuestions must be between 1 and %d", MaxQuestionCount))
	}

	if strings.TrimSpace(p.Difficulty) == "" {
		req.difficulty = model.DifficultyMedium
	} else {
		d, ok := model.ParseDifficulty(p.Difficulty)
		if !ok {
			return req, apperror.ValidationFailed("difficulty", "difficulty must be easy, medium or hard")
		}
		req.difficulty = d
	}

	if len(req.topics) == 0 {
		req.topics = []string{"general"}
	}
	return req, nil
}

// Gateway runs the provider fallback chain. It is safe for concurrent use.
type Gateway struct {
	providers []Provider
	logger    *slog.Logger
	metrics   metrics.Recorder
	timeout   time.Duration
	shuffle   func(n int, swap func(i, j int))
}

// NewGateway builds a gateway that tries providers in the given order. Nil
// providers are skipped, so callers can pass an unconfigured tier as nil.
// A non-positive timeout uses DefaultProviderTimeout.
func NewGateway(logger *slog.Logger, rec metrics.Recorder, timeout time.Duration, providers ...Provider) *Gateway {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	g := &Gateway{
		logger:  logger,
		metrics: rec,
		timeout: timeout,
		shuffle: rand.Shuffle,
	}
	for _, p := range providers {
		if p != nil {
			g.providers = append(g.providers, p)
		}
	}
	return g
}

// Providers returns the labels of the configured providers in chain order.
func (g *Gateway) Providers() []string {
	labels := make([]string, len(g.providers))
	for i, p := range g.providers {
		labels[i] = p.Label()
	}
	return labels
}

// Generate returns exactly the requested number of questions. Provider
// failures fall through to the next tier and finally to the local bank;
// the only errors are invalid params and a cancelled ctx.
func (g *Gateway) Generate(ctx context.Context, params GenerateParams) (*Generation, error) {
	req, err := params.normalize()
	if err != nil {
		return nil, err
	}

	prompt := questionPrompt(req)
	for _, p := range g.providers {
		if ctx.Err() != nil {
			break
		}
		text, err := g.complete(ctx, p, opGenerate, prompt)
		if err != nil {
			continue
		}
		qs, err := parseQuestions(text, req)
		if err != nil {
			g.providerFailed(p, opGenerate, err)
			continue
		}
		if len(qs) < req.count {
			g.logger.Info("topping up short provider output",
				"provider", p.Name(),
				"got", len(qs),
				"want", req.count,
			)
		}
		g.metrics.RecordGeneration(opGenerate, p.Name())
		return &Generation{Questions: g.fill(qs, req), Model: p.Label(), Tier: p.Name()}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.GenerationFailed("question generation was cancelled", err)
	}

	g.logger.Warn("all providers failed, serving question bank",
		"topics", strings.Join(req.topics, ","),
		"count", req.count,
	)
	g.metrics.RecordGeneration(opGenerate, TierBank)
	return &Generation{Questions: g.fill(nil, req), Model: BankLabel, Tier: TierBank}, nil
}

// Explain returns a structured explanation of a concept. It never fails for
// a non-empty concept unless ctx is cancelled.
func (g *Gateway) Explain(ctx context.Context, params ExplainParams) (*Explanation, error) {
	req := explainRequest{
		concept:    strings.TrimSpace(params.Concept),
		role:       strings.TrimSpace(params.Role),
		experience: strings.TrimSpace(params.Experience),
	}
	if req.concept == "" {
		return nil, apperror.ValidationFailed("concept", "concept is required")
	}

	prompt := explainPrompt(req)
	for _, p := range g.providers {
		if ctx.Err() != nil {
			break
		}
		text, err := g.complete(ctx, p, opExplain, prompt)
		if err != nil {
			continue
		}
		g.metrics.RecordGeneration(opExplain, p.Name())
		return &Explanation{Explanation: text, Model: p.Label(), Tier: p.Name()}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.GenerationFailed("explanation was cancelled", err)
	}

	if text, ok := cannedExplanation(req.concept); ok {
		g.metrics.RecordGeneration(opExplain, TierCanned)
		return &Explanation{Explanation: text, Model: ExplanationLabel, Tier: TierCanned}, nil
	}
	g.metrics.RecordGeneration(opExplain, TierTemplate)
	return &Explanation{Explanation: templateExplanation(req.concept), Model: ExplanationLabel, Tier: TierTemplate}, nil
}

// complete makes one bounded call to p. Failures are logged and counted
// here; callers only decide whether to advance.
func (g *Gateway) complete(ctx context.Context, p Provider, op string, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Complete(callCtx, prompt)
	g.metrics.RecordProviderLatency(p.Name(), time.Since(start))
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		g.providerFailed(p, op, err)
		return "", err
	}
	return text, nil
}

func (g *Gateway) providerFailed(p Provider, op string, err error) {
	g.logger.Warn("provider failed, falling back",
		"provider", p.Name(),
		"operation", op,
		"error", err,
	)
	g.metrics.RecordProviderFailure(p.Name(), op)
}
