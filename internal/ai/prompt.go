package ai

import (
	"fmt"
	"strings"
)

const (
	questionSystem = "You are an expert technical interviewer. Generate practical interview questions with detailed answers. Return only valid JSON."
	explainSystem  = "You are an expert technical interviewer. Provide detailed, structured explanations with examples and best practices."
)

// questionPrompt asks for exactly req.count items as a bare JSON array.
func questionPrompt(req generateRequest) Prompt {
	role := req.role
	if role == "" {
		role = "software developer"
	}
	var who strings.Builder
	fmt.Fprintf(&who, "a %s", role)
	if req.experience != "" {
		fmt.Fprintf(&who, " with %s years experience", req.experience)
	}

	user := fmt.Sprintf(`Generate %d interview questions for %s.

Topics: %s
Difficulty: %s

For each question write a detailed answer. If the answer needs code, include a small code block inside the answer string.
"type" must be one of "technical", "behavioral" or "system design".

Return ONLY a JSON array with this exact structure:
[
  {
    "question": "question text",
    "answer": "detailed answer",
    "topic": "%s",
    "difficulty": "%s",
    "type": "technical"
  }
]

No extra text, just the JSON array.`,
		req.count, who.String(),
		strings.Join(req.topics, ", "), req.difficulty,
		req.topics[0], req.difficulty,
	)

	return Prompt{
		System:      questionSystem,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   questionTokenBudget(req.count),
		JSON:        true,
	}
}

// questionTokenBudget grows with count so long batches are not cut off
// mid-array, which would make the whole response unparseable.
func questionTokenBudget(count int) int32 {
	n := 500 * count
	if n < 2500 {
		n = 2500
	}
	if n > 8000 {
		n = 8000
	}
	return int32(n)
}

func explainPrompt(req explainRequest) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a detailed technical explanation for: %q\n", req.concept)
	switch {
	case req.role != "" && req.experience != "":
		fmt.Fprintf(&b, "\nThe reader is preparing for a %s interview with %s years of experience. Pitch depth and examples at that level.\n", req.role, req.experience)
	case req.role != "":
		fmt.Fprintf(&b, "\nThe reader is preparing for a %s interview. Use examples relevant to that role.\n", req.role)
	case req.experience != "":
		fmt.Fprintf(&b, "\nThe reader has %s years of experience. Pitch depth at that level.\n", req.experience)
	}
	b.WriteString(`
Structure your response as follows:

## Definition
[Clear definition]

## Core Concepts
- Key point 1
- Key point 2
- Key point 3

## Practical Example
` + "```" + `
// Code example if applicable
` + "```" + `

## Interview Tips
- Important consideration 1
- Important consideration 2

## Common Pitfalls
- What to avoid

Make it comprehensive and interview-focused.`)

	return Prompt{
		System:      explainSystem,
		User:        b.String(),
		Temperature: 0.4,
		MaxTokens:   1500,
	}
}
