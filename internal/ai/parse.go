package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

var (
	errNoJSONArray  = errors.New("ai: completion contains no JSON array")
	errNoValidItems = errors.New("ai: completion has no well-formed questions")
)

// rawItem accepts whatever a model sends for each field; everything is
// normalized afterwards.
type rawItem struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

// parseQuestions extracts the outermost JSON array from text, which may be
// wrapped in prose or a markdown fence, and normalizes each item against
// req. Items without both question and answer are dropped. It fails if no
// item survives.
func parseQuestions(text string, req generateRequest) ([]model.QuestionInput, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, errNoJSONArray
	}

	var items []rawItem
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("ai: decoding questions: %w", err)
	}

	out := make([]model.QuestionInput, 0, len(items))
	for _, it := range items {
		q, ok := normalizeItem(it, req)
		if ok {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, errNoValidItems
	}
	return out, nil
}

// normalizeItem fills a missing topic with the first requested topic, an
// invalid difficulty with the requested one and an invalid type with
// technical.
func normalizeItem(it rawItem, req generateRequest) (model.QuestionInput, bool) {
	q := model.QuestionInput{
		Question: strings.TrimSpace(it.Question),
		Answer:   strings.TrimSpace(it.Answer),
		Topic:    strings.TrimSpace(it.Topic),
	}
	if q.Question == "" || q.Answer == "" {
		return q, false
	}
	if q.Topic == "" {
		q.Topic = displayTopic(req.topics[0])
	}

	if d, ok := model.ParseDifficulty(it.Difficulty); ok {
		q.Difficulty = d
	} else {
		q.Difficulty = req.difficulty
	}
	if t, ok := model.ParseQuestionType(it.Type); ok {
		q.Type = t
	} else {
		q.Type = model.TypeTechnical
	}
	return q, true
}
