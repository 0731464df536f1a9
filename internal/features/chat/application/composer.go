package application

import (
	"strings"

	"innovation-engine/backend/internal/features/chat/domain"
)

const responseScaffold = `Please provide an innovative solution for [specific problem/domain]:

1. Concept Summary
   • Brief overview of your proposed solution (2-3 sentences)

2. Innovation Highlights
   • [First key innovation element]
   • [Second key innovation element]
   • [Third key innovation element]

3. Implementation Roadmap
   Step 1: [First implementation step]
   Step 2: [Second implementation step]
   Step 3: [Third implementation step]
   [Additional steps as needed]

4. Challenges & Solutions
   Challenge: [First potential challenge]
   Solution: [Proposed mitigation]

   Challenge: [Second potential challenge]
   Solution: [Proposed mitigation]

5. Expected Impact
   • [Primary benefit or impact]
   • [Secondary benefits]
   • [Metrics for measuring success]

What aspect of this solution would you like me to elaborate on further?`

const fallbackInstruction = "Generate a creative and innovative solution to this problem: "

// ComposePrompt builds the domain-specific instruction for question.
// The output depends only on its arguments.
func ComposePrompt(category domain.Category, question string) string {
	var b strings.Builder
	b.WriteString(domain.TemplateFor(category))
	b.WriteString("\n\nProblem: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(responseScaffold)
	b.WriteString("\n\n")
	b.WriteString(domain.GuidanceFor(category))
	return b.String()
}

// ComposeMessages replaces the last message with a user message carrying the
// composed prompt. The input slice is not modified.
func ComposeMessages(category domain.Category, messages []domain.Message) ([]domain.Message, error) {
	question, err := domain.Question(messages)
	if err != nil {
		return nil, err
	}
	return append(domain.History(messages), domain.Message{
		Role:    string(domain.RoleUser),
		Content: ComposePrompt(category, question),
	}), nil
}

// FallbackMessages replaces the last message with the generic instruction.
func FallbackMessages(messages []domain.Message) ([]domain.Message, error) {
	question, err := domain.Question(messages)
	if err != nil {
		return nil, err
	}
	return append(domain.History(messages), domain.Message{
		Role:    string(domain.RoleUser),
		Content: fallbackInstruction + question,
	}), nil
}
