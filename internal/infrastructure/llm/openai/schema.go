package openai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

// responseSchema is the strict contract for the service reply. Extra keys
// are tolerated; the three required ones must be non-empty strings.
const responseSchema = `{
	"type": "object",
	"required": ["category", "filename", "summary"],
	"properties": {
		"category": {"type": "string", "minLength": 1},
		"filename": {"type": "string", "minLength": 1},
		"summary":  {"type": "string", "minLength": 1}
	}
}`

var compiledSchema = jsonschema.MustCompileString("classification.schema.json", responseSchema)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// parseClassification extracts a JSON object from a free-form service
// reply and validates it. The reply is not trusted as structured data:
// surrounding prose, markdown fences, and trailing commas are tolerated.
// Anything else is a schema violation, distinct from transport failures.
func parseClassification(raw string) (domain.ClassificationResult, error) {
	candidate := extractJSONObject(raw)

	var instance any
	if err := json.Unmarshal([]byte(candidate), &instance); err != nil {
		// Trailing-comma repair only on a failed parse; the regex cannot
		// tell a comma inside a string value from a real trailing comma.
		candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")
		if err := json.Unmarshal([]byte(candidate), &instance); err != nil {
			return domain.ClassificationResult{}, domain.WrapError(domain.ErrSchemaViolation, "parse reply", err)
		}
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrSchemaViolation, "validate reply", err)
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrSchemaViolation, "decode reply", err)
	}
	return result, nil
}

func extractJSONObject(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.Contains(cleaned, "```") {
		cleaned = strings.ReplaceAll(cleaned, "```json", "```")
		if start := strings.Index(cleaned, "```"); start >= 0 {
			rest := cleaned[start+3:]
			if end := strings.Index(rest, "```"); end >= 0 {
				cleaned = rest[:end]
			} else {
				cleaned = rest
			}
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}
