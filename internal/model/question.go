package model

import (
	"sort"
	"strings"
	"time"
)

// Difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty lower-cases and trims s. The boolean is false when the
// result is not a known level.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// QuestionType classifies a question.
type QuestionType string

const (
	TypeTechnical    QuestionType = "technical"
	TypeBehavioral   QuestionType = "behavioral"
	TypeSystemDesign QuestionType = "system design"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeTechnical, TypeBehavioral, TypeSystemDesign:
		return true
	}
	return false
}

func ParseQuestionType(s string) (QuestionType, bool) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// DefaultTopic is used when a question arrives without one.
const DefaultTopic = "General"

// Question is a single question/answer pair inside a Session.
//
// UserID is a denormalized copy of the owning session's UserID. It lets
// "list my pinned questions" run without a join, and it is what ownership
// checks on question mutations compare against.
type Question struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session"`
	UserID     string       `json:"user"`
	Question   string       `json:"question"`
	Answer     string       `json:"answer"`
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
	Note       string       `json:"note"`
	IsPinned   bool         `json:"isPinned"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	// SessionTitle labels the owning session. Only the pinned list, which
	// spans sessions, fills it.
	SessionTitle string `json:"sessionTitle,omitempty"`
}

// QuestionInput is the caller-supplied part of a Question, as accepted by
// create-session and add-questions and as produced by the generator.
type QuestionInput struct {
	Question   string       `json:"question"`
	Answer     string       `json:"answer"`
	Topic      string       `json:"topic,omitempty"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
	Type       QuestionType `json:"type,omitempty"`
}

// WithDefaults fills topic, difficulty and type the way the store does.
// Unknown difficulty/type values are replaced, not rejected.
func (in QuestionInput) WithDefaults() QuestionInput {
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	if in.Topic = strings.TrimSpace(in.Topic); in.Topic == "" {
		in.Topic = DefaultTopic
	}
	if d, ok := ParseDifficulty(string(in.Difficulty)); ok {
		in.Difficulty = d
	} else {
		in.Difficulty = DifficultyMedium
	}
	if t, ok := ParseQuestionType(string(in.Type)); ok {
		in.Type = t
	} else {
		in.Type = TypeTechnical
	}
	return in
}

// SortQuestions orders qs in display order: pinned before unpinned, then
// newest CreatedAt first. Equal timestamps fall back to descending ID, which
// for xid ids is creation order.
//
// The store returns rows in this order already; clients call this after an
// optimistic local change.
func SortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		a, b := qs[i], qs[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
