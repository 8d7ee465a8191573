package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

func TestDisplayTopic(t *testing.T) {
	assert.Equal(t, "React", displayTopic(" react "))
	assert.Equal(t, "Machine Learning", displayTopic("MACHINE LEARNING"))
	assert.Equal(t, "General", displayTopic("general"))
	assert.Equal(t, "Kubernetes", displayTopic(" Kubernetes"))
}

func TestBankCandidates(t *testing.T) {
	t.Run("concatenates matches", func(t *testing.T) {
		pool := bankCandidates([]string{"React", "python", "Rust"})
		require.Len(t, pool, len(questionBank["react"].entries)+len(questionBank["python"].entries))
		assert.Equal(t, "React", pool[0].Topic)
		assert.Equal(t, "Python", pool[len(pool)-1].Topic)
	})

	t.Run("generic when nothing matches", func(t *testing.T) {
		pool := bankCandidates([]string{"Rust", "Elixir"})
		assert.Equal(t, genericBank, pool)
	})

	t.Run("does not alias the generic bank", func(t *testing.T) {
		pool := bankCandidates([]string{"general"})
		pool[0].Question = "changed"
		assert.NotEqual(t, "changed", genericBank[0].Question)
	})
}

func TestPadding_CyclesTopicsThenTemplates(t *testing.T) {
	qs := padding([]string{"react", "Go"}, 4)
	require.Len(t, qs, 4)

	assert.Equal(t, "What are the key concepts in React?", qs[0].Question)
	assert.Equal(t, "What are the key concepts in Go?", qs[1].Question)
	assert.Equal(t, "React", qs[2].Topic)
	assert.NotEqual(t, qs[0].Question, qs[2].Question)
	for _, q := range qs {
		assert.NotEmpty(t, q.Answer)
		assert.True(t, q.Type.Valid())
	}
}

func TestFill(t *testing.T) {
	g := newTestGateway(t)
	req := generateRequest{topics: []string{"streamlit"}, count: 4, difficulty: model.DifficultyHard}

	own := model.QuestionInput{
		Question:   "How do you handle state in Streamlit applications?",
		Answer:     "mine",
		Topic:      "Streamlit",
		Difficulty: model.DifficultyEasy,
		Type:       model.TypeTechnical,
	}
	qs := g.fill([]model.QuestionInput{own}, req)
	require.Len(t, qs, 4)

	assert.Equal(t, own, qs[0], "existing items are kept as-is")
	questions := map[string]int{}
	for _, q := range qs {
		questions[q.Question]++
	}
	for q, n := range questions {
		assert.Equal(t, 1, n, "duplicate %q", q)
	}
	for _, q := range qs[1:] {
		assert.Equal(t, model.DifficultyHard, q.Difficulty)
	}
}

func TestFill_ShufflesBank(t *testing.T) {
	g := newTestGateway(t)
	var shuffled int
	g.shuffle = func(n int, swap func(i, j int)) {
		shuffled = n
		swap(0, n-1)
	}

	qs := g.fill(nil, generateRequest{topics: []string{"javascript"}, count: 3, difficulty: model.DifficultyMedium})
	require.Len(t, qs, 3)
	assert.Equal(t, 3, shuffled)
	assert.Equal(t, "What is the event loop in JavaScript?", qs[0].Question)
}
