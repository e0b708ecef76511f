// Package prompts builds the prompts sent to the text-completion
// collaborator by the LLM-assisted TableSpec compiler.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
)

// TableSpecSystemMessage constrains the model to emit only the
// TableSpec JSON shape. The output is still fully validated; the prompt
// constraint just raises the success rate of the assisted path.
const TableSpecSystemMessage = `You are a query planner for a real-estate inventory system. ` +
	`Convert the user's request into a TableSpec JSON object. ` +
	`Respond with ONLY the JSON object, no prose, no markdown fences.`

// BuildTableSpecPrompt creates the prompt asking the model to compile
// an intent into a TableSpec. The closed signal vocabulary and the
// operator sets are inlined so the model cannot invent fields.
func BuildTableSpecPrompt(intent string, reg *registry.Registry) string {
	var prompt strings.Builder

	prompt.WriteString("# TableSpec Compilation\n\n")
	prompt.WriteString("Convert this request into a TableSpec JSON object:\n\n")
	prompt.WriteString(fmt.Sprintf("Request: %q\n\n", intent))

	prompt.WriteString("## Output shape\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"intent\": \"<short human-readable label>\",\n")
	prompt.WriteString("  \"row_grain\": \"project\" | \"asset\",\n")
	prompt.WriteString("  \"scope\": {\"areas\": [<canonical area names>], \"cities\": [<canonical city names>]},\n")
	prompt.WriteString("  \"signals\": [<column names to project>],\n")
	prompt.WriteString("  \"filters\": [{\"field\": <name>, \"op\": \"eq\"|\"neq\"|\"lt\"|\"lte\"|\"gt\"|\"gte\"|\"in\", \"value\": <value>}]\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("## Rules\n\n")
	prompt.WriteString("- row_grain is \"asset\" when the request is about individual units (bedroom counts, unit prices); otherwise \"project\".\n")
	prompt.WriteString("- Every signal and filter field MUST come from the allowed list below. Never invent fields.\n")
	prompt.WriteString("- Amounts like \"2m\" mean 2000000 AED. \"950k\" means 950000.\n")
	prompt.WriteString("- Area names must be canonical (e.g. \"JVC\", \"Dubai Marina\", \"Downtown Dubai\").\n")
	prompt.WriteString("- When the request implies no specific columns, use the default signals for the row grain.\n\n")

	writeGrainVocabulary(&prompt, reg, models.GrainProject)
	writeGrainVocabulary(&prompt, reg, models.GrainAsset)

	return prompt.String()
}

func writeGrainVocabulary(prompt *strings.Builder, reg *registry.Registry, grain models.RowGrain) {
	prompt.WriteString(fmt.Sprintf("## Allowed signals (%s grain)\n\n", grain))
	for _, name := range reg.SignalsFor(grain) {
		ops := reg.AllowedOperatorsFor(name)
		opNames := make([]string, 0, len(ops))
		for _, op := range []models.FilterOp{models.OpEq, models.OpNeq, models.OpLt, models.OpLte, models.OpGt, models.OpGte, models.OpIn} {
			if ops[op] {
				opNames = append(opNames, string(op))
			}
		}
		prompt.WriteString(fmt.Sprintf("- %s (ops: %s)\n", name, strings.Join(opNames, ", ")))
	}
	prompt.WriteString("\n")
}
