package ai

import (
	"fmt"
	"strings"
)

var cannedExplanations = map[string]string{
	"react": `React is a JavaScript library for building user interfaces, developed by Meta.

**Core Principles:**
- Component-based architecture
- Virtual DOM for performance
- Unidirectional data flow
- Declarative programming style

**Key Features:**
- JSX syntax for writing components
- State management with hooks
- Props for component communication
- Lifecycle handling with effects

**Interview Topics:**
- Virtual DOM vs real DOM
- State vs props
- React hooks (useState, useEffect and friends)
- Component lifecycle
- Performance optimization`,

	"javascript": `JavaScript is a dynamic, interpreted programming language that powers modern web development.

**Core Concepts:**
- Dynamic typing and prototype-based OOP
- Event-driven and asynchronous programming
- First-class functions and closures
- Hoisting and scope management

**Key Features:**
- Variables: let, const, var
- Functions: regular, arrow, async
- Objects and arrays
- Promises and async/await
- The event loop and callbacks

**Interview Focus:**
- Closures and scope
- Asynchronous programming
- ES6+ features
- DOM manipulation
- Error handling`,

	"python": `Python is a high-level, interpreted programming language known for its simplicity and versatility.

**Key Characteristics:**
- Readable, clean syntax
- Dynamic typing with a strong type system
- Extensive standard library
- Object-oriented and functional programming support

**Important Features:**
- List comprehensions and generators
- Decorators and context managers
- Multiple inheritance and metaclasses
- Exception handling
- Package management with pip

**Interview Topics:**
- Data structures (lists, dicts, sets)
- OOP concepts and inheritance
- Decorators and generators
- Memory management
- Popular frameworks (Django, Flask)`,
}

const genericExplanation = `**%s** is an important concept in software development.

**Overview:**
This topic comes up often in technical interviews and is fundamental knowledge that developers are expected to understand.

**Key Areas to Study:**
- Core principles and definitions
- Practical applications and use cases
- Best practices and common patterns
- Performance considerations
- Integration with other technologies

**Interview Preparation:**
- Understand the fundamentals
- Practice with real examples
- Know the common pitfalls
- Be ready to explain trade-offs
- Prepare code examples`

// cannedExplanation returns the stored text for a known concept. The match
// is case-insensitive and exact after trimming.
func cannedExplanation(concept string) (string, bool) {
	text, ok := cannedExplanations[strings.ToLower(strings.TrimSpace(concept))]
	return text, ok
}

func templateExplanation(concept string) string {
	return fmt.Sprintf(genericExplanation, strings.TrimSpace(concept))
}
