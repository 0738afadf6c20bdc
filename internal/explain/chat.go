package explain

import (
	"context"
	"fmt"
)

const chatPromptTemplate = `You are a helpful AI assistant explaining a technical execution report to a developer.

REPORT CONTEXT:
%s

USER QUESTION:
%s

Answer the user's question based strictly on the report context provided above.
If the answer is not in the report, say so.
Be concise and technical.`

const chatUnavailable = "Sorry, I couldn't process your request at this time."

// Chat answers a free-form question about a rendered report using the first
// responsive remote provider. Unlike Explain there is no deterministic
// fallback to generate an answer from, so provider exhaustion yields a fixed
// apology instead.
func (e *Explainer) Chat(ctx context.Context, reportText, query string) string {
	prompt := fmt.Sprintf(chatPromptTemplate, reportText, query)
	if text, ok := e.attemptChain(ctx, prompt, "chat"); ok {
		return text
	}
	return chatUnavailable
}
