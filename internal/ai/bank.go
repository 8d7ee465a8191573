package ai

import (
	"fmt"
	"strings"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// BankLabel is the model label reported when questions come from the
// local bank.
const BankLabel = "Enhanced Fallback System"

type bankEntry struct {
	question string
	answer   string
	qType    model.QuestionType
}

type bankTopic struct {
	display string
	entries []bankEntry
}

// questionBank is keyed by lower-cased topic.
var questionBank = map[string]bankTopic{
	"react": {"React", []bankEntry{
		{
			"What is React and what are its key features?",
			"React is a JavaScript library for building user interfaces. Key features include the virtual DOM, a component-based architecture, JSX syntax and unidirectional data flow.",
			model.TypeTechnical,
		},
		{
			"Explain the difference between state and props in React.",
			"State is internal component data that can change over time, while props are read-only inputs passed down from a parent component.",
			model.TypeTechnical,
		},
		{
			"What are React hooks and why were they introduced?",
			"Hooks let function components use state and lifecycle features. They were introduced to avoid class component complexity and make stateful logic reusable and easier to test.",
			model.TypeTechnical,
		},
		{
			"Explain the Virtual DOM and its benefits.",
			"The virtual DOM is an in-memory representation of the real DOM. React diffs successive virtual trees and applies only the necessary changes to the real DOM, which keeps updates fast.",
			model.TypeTechnical,
		},
	}},
	"javascript": {"JavaScript", []bankEntry{
		{
			"What is the difference between let, const, and var?",
			"var is function-scoped and hoisted, let is block-scoped and can be reassigned, and const is block-scoped and cannot be reassigned. let and const also have a temporal dead zone.",
			model.TypeTechnical,
		},
		{
			"Explain closures in JavaScript with a practical example.",
			"A closure is an inner function that keeps access to its outer function's variables after the outer function returns. Example: function counter() { let count = 0; return () => ++count; }",
			model.TypeTechnical,
		},
		{
			"What is the event loop in JavaScript?",
			"The event loop lets JavaScript perform non-blocking work on a single thread by running queued callbacks, promise reactions and timers once the call stack is empty.",
			model.TypeTechnical,
		},
	}},
	"python": {"Python", []bankEntry{
		{
			"What are Python decorators and how do you create one?",
			"Decorators are callables that wrap another function to extend its behavior without changing its code. They are applied with the @decorator syntax; built-in examples are @property and @staticmethod.",
			model.TypeTechnical,
		},
		{
			"Explain list comprehensions vs generator expressions.",
			"A list comprehension such as [x for x in range(10)] builds the whole list in memory, while a generator expression such as (x for x in range(10)) yields values lazily and saves memory.",
			model.TypeTechnical,
		},
		{
			"What is the difference between lists and tuples?",
			"Lists are mutable and written with square brackets, while tuples are immutable and written with parentheses. Tuples can be used as dictionary keys.",
			model.TypeTechnical,
		},
	}},
	"machine learning": {"Machine Learning", []bankEntry{
		{
			"What is the difference between supervised and unsupervised learning?",
			"Supervised learning trains on labeled data for classification or regression, while unsupervised learning finds structure in unlabeled data through clustering or dimensionality reduction.",
			model.TypeTechnical,
		},
		{
			"Explain overfitting and how to prevent it.",
			"Overfitting is when a model learns noise in the training data and generalizes poorly. Counter it with cross-validation, L1/L2 regularization, dropout, early stopping and more training data.",
			model.TypeTechnical,
		},
		{
			"What is cross-validation?",
			"Cross-validation estimates model performance by repeatedly splitting the data into training and validation folds and averaging the results.",
			model.TypeTechnical,
		},
	}},
	"streamlit": {"Streamlit", []bankEntry{
		{
			"What is Streamlit and what are its main advantages?",
			"Streamlit is a Python framework for building data apps quickly. Its advantages are simplicity, rapid prototyping and a rich set of built-in widgets.",
			model.TypeTechnical,
		},
		{
			"How do you handle state in Streamlit applications?",
			"Streamlit provides st.session_state to keep data across reruns, and caching decorators such as st.cache_data to avoid recomputing expensive results.",
			model.TypeTechnical,
		},
	}},
}

// genericBank is used when no requested topic has bank entries.
var genericBank = []model.QuestionInput{
	{
		Question: "Describe your approach to debugging a complex issue in production.",
		Answer:   "Start with logs and monitoring, reproduce the issue, narrow it down with debugging tools, ship a fix with proper tests, and add monitoring so a recurrence is caught early.",
		Topic:    "Problem Solving",
		Type:     model.TypeBehavioral,
	},
	{
		Question: "How do you ensure code quality in a team environment?",
		Answer:   "Use code reviews, automated tests, linting, CI/CD pipelines and shared coding standards, and keep documentation close to the code.",
		Topic:    "Software Engineering",
		Type:     model.TypeBehavioral,
	},
}

// paddingTemplates top a short pool up to the requested count. Each %s is
// the topic name.
var paddingTemplates = []struct {
	question string
	answer   string
	qType    model.QuestionType
}{
	{
		"What are the key concepts in %s?",
		"Key concepts include the fundamental principles, best practices and common patterns used in %s. Be ready to define each one and say when you would use it.",
		model.TypeTechnical,
	},
	{
		"What are common pitfalls when working with %s, and how do you avoid them?",
		"Typical pitfalls in %s come from misunderstanding its defaults, skipping error handling and ignoring performance characteristics. Avoid them with tests, code review and reading the documentation for edge cases.",
		model.TypeTechnical,
	},
	{
		"How would you explain %s to a junior developer?",
		"Start from the problem %s solves, show the smallest working example, then layer on the concepts that matter in production. Check understanding by having them extend the example.",
		model.TypeBehavioral,
	},
	{
		"Describe a project where you used %s. What trade-offs did you make?",
		"Structure the answer as situation, task, action and result. Name the alternatives to %s you considered, why you chose it, and what you would do differently now.",
		model.TypeBehavioral,
	},
	{
		"How do you test and debug code that relies on %s?",
		"Isolate the parts that depend on %s behind small interfaces, cover them with unit tests, add integration tests for the real dependency, and use logging and a debugger to narrow down failures.",
		model.TypeTechnical,
	},
}

// displayTopic returns the canonical spelling for a bank topic and the
// trimmed input otherwise.
func displayTopic(topic string) string {
	key := strings.ToLower(strings.TrimSpace(topic))
	if t, ok := questionBank[key]; ok {
		return t.display
	}
	if key == "general" {
		return model.DefaultTopic
	}
	return strings.TrimSpace(topic)
}

// bankCandidates concatenates the bank entries for every requested topic,
// or returns the generic pair when none match.
func bankCandidates(topics []string) []model.QuestionInput {
	var pool []model.QuestionInput
	for _, topic := range topics {
		t, ok := questionBank[strings.ToLower(topic)]
		if !ok {
			continue
		}
		for _, e := range t.entries {
			pool = append(pool, model.QuestionInput{
				Question: e.question,
				Answer:   e.answer,
				Topic:    t.display,
				Type:     e.qType,
			})
		}
	}
	if len(pool) == 0 {
		pool = append(pool, genericBank...)
	}
	return pool
}

// padding returns n template questions cycling through topics first, then
// templates, so consecutive items cover different topics.
func padding(topics []string, n int) []model.QuestionInput {
	out := make([]model.QuestionInput, 0, n)
	for i := 0; i < n; i++ {
		topic := displayTopic(topics[i%len(topics)])
		tpl := paddingTemplates[(i/len(topics))%len(paddingTemplates)]
		out = append(out, model.QuestionInput{
			Question: fmt.Sprintf(tpl.question, topic),
			Answer:   fmt.Sprintf(tpl.answer, topic),
			Topic:    topic,
			Type:     tpl.qType,
		})
	}
	return out
}

// fill returns qs truncated or topped up to exactly req.count. Top-up
// draws from the shuffled bank first, skipping questions already present,
// then from the padding templates. Added items carry req.difficulty.
func (g *Gateway) fill(qs []model.QuestionInput, req generateRequest) []model.QuestionInput {
	if len(qs) >= req.count {
		return qs[:req.count]
	}

	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		seen[q.Question] = true
	}
	pool := bankCandidates(req.topics)
	g.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, q := range pool {
		if len(qs) == req.count {
			return qs
		}
		if seen[q.Question] {
			continue
		}
		q.Difficulty = req.difficulty
		qs = append(qs, q)
	}

	for _, q := range padding(req.topics, req.count-len(qs)) {
		q.Difficulty = req.difficulty
		qs = append(qs, q)
	}
	return qs
}
