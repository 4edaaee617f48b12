package analyze

import (
	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
)

// segmentSchema is the response schema the model is constrained to. The
// service enforces the structure server-side, so the reply is parseable
// without free-text extraction.
func segmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"start_time": {
				Type:        genai.TypeString,
				Description: "Segment start in HH:MM:SS format",
			},
			"end_time": {
				Type:        genai.TypeString,
				Description: "Segment end in HH:MM:SS format",
			},
			"virality_score": {
				Type:        genai.TypeInteger,
				Description: "How likely the segment is to perform, 0-100",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Why this segment was chosen",
			},
			"suggested_title": {
				Type:        genai.TypeString,
				Description: "Short, punchy title for the clip",
			},
			"crop_focus": {
				Type:        genai.TypeString,
				Format:      "enum",
				Enum:        []string{"center", "left", "right"},
				Description: "Horizontal anchor of the main subject",
			},
		},
		Required: []string{"start_time", "end_time", "virality_score", "reasoning", "suggested_title"},
	}
}

// segmentJSONSchema double-checks the reply client-side. Constrained
// generation has been observed to drop fields under safety fallbacks, so
// the response is validated before it is trusted.
const segmentJSONSchema = `{
	"type": "object",
	"required": ["start_time", "end_time", "virality_score", "reasoning", "suggested_title"],
	"properties": {
		"start_time":      {"type": "string", "pattern": "^[0-9]{1,2}:[0-9]{2}(:[0-9]{2})?$"},
		"end_time":        {"type": "string", "pattern": "^[0-9]{1,2}:[0-9]{2}(:[0-9]{2})?$"},
		"virality_score":  {"type": "integer", "minimum": 0, "maximum": 100},
		"reasoning":       {"type": "string"},
		"suggested_title": {"type": "string", "minLength": 1},
		"crop_focus":      {"type": "string", "enum": ["center", "left", "right"]}
	}
}`

// validateSegmentJSON validates the model's reply against the segment
// schema without decoding it first.
func validateSegmentJSON(jsonText string) error {
	schemaLoader := gojsonschema.NewStringLoader(segmentJSONSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonText)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	return &SchemaViolationError{Result: result}
}

// SchemaViolationError reports which fields of the model reply failed
// validation.
type SchemaViolationError struct {
	Result *gojsonschema.Result
}

func (e *SchemaViolationError) Error() string {
	msg := "schema violations:"
	for _, desc := range e.Result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msg += " " + field + ": " + desc.Description() + ";"
	}
	return msg
}
