package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

func TestParseQuestions(t *testing.T) {
	req := generateRequest{topics: []string{"react", "Node"}, count: 3, difficulty: model.DifficultyEasy}

	text := "Here you go:\n```json\n" + `[
  {"question": " What is JSX? ", "answer": "A syntax extension.", "topic": "React", "difficulty": "HARD", "type": "Technical"},
  {"question": "Tell me about a conflict.", "answer": "STAR format.", "difficulty": "impossible", "type": "culture"},
  {"question": "", "answer": "orphaned answer"},
  {"question": "Design a URL shortener.", "answer": "Hashing plus a KV store.", "topic": "Systems", "type": "system design"}
]` + "\n```"

	qs, err := parseQuestions(text, req)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	assert.Equal(t, model.QuestionInput{
		Question:   "What is JSX?",
		Answer:     "A syntax extension.",
		Topic:      "React",
		Difficulty: model.DifficultyHard,
		Type:       model.TypeTechnical,
	}, qs[0])

	// missing topic, bad difficulty and bad type are filled in
	assert.Equal(t, "React", qs[1].Topic)
	assert.Equal(t, model.DifficultyEasy, qs[1].Difficulty)
	assert.Equal(t, model.TypeTechnical, qs[1].Type)

	assert.Equal(t, model.TypeSystemDesign, qs[2].Type)
}

func TestParseQuestions_Errors(t *testing.T) {
	req := generateRequest{topics: []string{"general"}, count: 5, difficulty: model.DifficultyMedium}

	tests := []struct {
		name string
		text string
		want error
	}{
		{"prose only", "I can't do that.", errNoJSONArray},
		{"object not array", `{"question":"q","answer":"a"}`, errNoJSONArray},
		{"reversed brackets", "] nothing [", errNoJSONArray},
		{"empty array", "[]", errNoValidItems},
		{"all malformed", `[{"question":"q"},{"answer":"a"},{}]`, errNoValidItems},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuestions(tt.text, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := parseQuestions(`[{"question": 42, "answer": "a"}]`, req)
	assert.Error(t, err, "wrong field types fail decoding")
}

func TestQuestionTokenBudget(t *testing.T) {
	assert.Equal(t, int32(2500), questionTokenBudget(1))
	assert.Equal(t, int32(2500), questionTokenBudget(5))
	assert.Equal(t, int32(5000), questionTokenBudget(10))
	assert.Equal(t, int32(8000), questionTokenBudget(20))
}

func TestQuestionPrompt_DefaultRole(t *testing.T) {
	p := questionPrompt(generateRequest{topics: []string{"general"}, count: 5, difficulty: model.DifficultyMedium})
	assert.Contains(t, p.User, "Generate 5 interview questions for a software developer.")
	assert.InDelta(t, 0.7, p.Temperature, 0.001)
}

func TestExplainPrompt_Context(t *testing.T) {
	tests := []struct {
		name string
		req  explainRequest
		want string
	}{
		{"role and experience", explainRequest{concept: "CAP", role: "SRE", experience: "5"}, "SRE interview with 5 years of experience"},
		{"role only", explainRequest{concept: "CAP", role: "SRE"}, "preparing for a SRE interview."},
		{"experience only", explainRequest{concept: "CAP", experience: "5"}, "has 5 years of experience"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := explainPrompt(tt.req)
			assert.Contains(t, p.User, tt.want)
			assert.Contains(t, p.User, "## Definition")
			assert.Equal(t, int32(1500), p.MaxTokens)
		})
	}

	p := explainPrompt(explainRequest{concept: "CAP"})
	assert.NotContains(t, p.User, "preparing for")
}
