package explain

import (
	"fmt"
	"strings"

	"github.com/explainx/explainx/internal/trace"
)

// FallbackExplanation synthesizes a deterministic explanation from the
// record's own fields. It never fails, which makes the explanation chain a
// total function even with no reachable provider.
func FallbackExplanation(record *trace.Record) string {
	pairs := make([]string, 0, len(record.Inputs))
	for _, input := range record.Inputs {
		pairs = append(pairs, fmt.Sprintf("%s=%v", input.Name, input.Value))
	}
	return fmt.Sprintf(
		"The function '%s' was called with inputs: %s. It processed these values and returned: %s. Execution took %.2fms.",
		record.Function,
		strings.Join(pairs, ", "),
		formatValue(record.Output),
		record.DurationMS,
	)
}
