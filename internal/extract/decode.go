package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"reelchef/internal/recipe"
)

// decodeParts parses text as a JSON object and defaults every field
// independently. Only a non-object document is an error.
func decodeParts(text string, newID func() string) (*recipe.ExtractedParts, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	parts := recipe.EmptyExtractedParts()

	if items, ok := raw["ingredients"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, ok := obj["name"].(string)
			if !ok || name == "" {
				continue
			}
			id, _ := obj["id"].(string)
			if id == "" {
				id = newID()
			}
			parts.Ingredients = append(parts.Ingredients, recipe.Ingredient{
				ID:             id,
				Name:           name,
				Quantity:       textField(obj["quantity"]),
				QuantityMetric: textField(obj["quantityMetric"]),
			})
		}
	}

	if steps, ok := raw["steps"].([]any); ok {
		for _, s := range steps {
			str, ok := s.(string)
			if !ok || strings.TrimSpace(str) == "" {
				continue
			}
			parts.Steps = append(parts.Steps, strings.TrimSpace(str))
		}
	}

	if notes, ok := raw["extractedNotes"].(string); ok {
		parts.ExtractedNotes = strings.TrimSpace(notes)
	}
	if title, ok := raw["suggestedTitle"].(string); ok {
		parts.SuggestedTitle = strings.TrimSpace(title)
	}

	return parts, nil
}

// textField renders strings as-is and numbers without trailing zeros;
// anything else becomes "".
func textField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
