package explain

import (
	"fmt"
	"strings"

	"github.com/explainx/explainx/internal/trace"
)

const reportRuleWidth = 60

// Render turns a batch of explained records into the final text report.
// Deterministic: identical input sequences produce byte-identical reports.
// An empty batch yields only the header and footer.
func Render(records []*trace.Record) string {
	thickRule := strings.Repeat("=", reportRuleWidth)
	thinRule := strings.Repeat("-", reportRuleWidth)

	lines := []string{
		thickRule,
		"ExplainX - Function Execution Report",
		thickRule,
		"",
	}

	for i, record := range records {
		lines = append(lines,
			fmt.Sprintf("[%d] Function: %s", i+1, record.Function),
			fmt.Sprintf("    File: %s", record.Location),
			fmt.Sprintf("    Execution Time: %.2fms", record.DurationMS),
			"",
			"    📥 Inputs:",
		)
		for _, input := range record.Inputs {
			lines = append(lines, fmt.Sprintf("       • %s: %v", input.Name, input.Value))
		}
		lines = append(lines,
			"",
			fmt.Sprintf("    📤 Output: %s", formatValue(record.Output)),
			"",
			"    💡 Explanation:",
		)
		explanation := record.Explanation
		if explanation == "" {
			explanation = "No explanation available"
		}
		for _, line := range strings.Split(explanation, "\n") {
			lines = append(lines, "       "+line)
		}
		lines = append(lines, "", thinRule, "")
	}

	lines = append(lines,
		thickRule,
		"End of ExplainX Report",
		thickRule,
	)

	return strings.Join(lines, "\n")
}
