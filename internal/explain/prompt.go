// Package explain turns drained trace records into human-readable
// explanations and renders them as a text report. Remote providers are
// attempted in priority order; a deterministic local fallback guarantees an
// explanation is always produced.
package explain

import (
	"encoding/json"
	"fmt"

	"github.com/explainx/explainx/internal/trace"
)

const promptTemplate = `You are a senior software engineer. Analyze this function execution and provide a clear, concise explanation to your Junior Software Engineer.

**Function Name:** %s
**File:** %s
**Inputs:** %s
**Output:** %s

**Source Code:**
` + "```go\n%s\n```" + `

Provide a brief explanation (2-3 sentences) of:
1. What this function does
2. Why it returned this specific output given the inputs
3. Any important logic or edge cases handled

Keep the explanation simple and understandable for your Junior Software Engineer.`

// BuildPrompt renders the provider prompt for one record. It is pure and
// deterministic: identical records produce identical prompts.
func BuildPrompt(record *trace.Record) string {
	if record == nil {
		return ""
	}
	inputs, err := json.MarshalIndent(record.Inputs, "", "  ")
	if err != nil {
		inputs = []byte("{}")
	}
	return fmt.Sprintf(
		promptTemplate,
		record.Function,
		record.Location,
		inputs,
		formatValue(record.Output),
		record.SourceText,
	)
}

// formatValue renders scalars verbatim and everything else as compact JSON,
// mirroring how outputs appear in prompts, fallbacks, and reports.
func formatValue(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", value)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}
