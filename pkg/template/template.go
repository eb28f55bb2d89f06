// Package template resolves node parameter expressions against the current input item.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dukex/operion-octagon/pkg/models"
)

// ExpressionPrefix marks a parameter value as an expression. Values without
// it are literal text, braces included.
const ExpressionPrefix = "="

// ItemData builds the data an expression sees when evaluated for one item:
// .json is the item payload, .index its position in the batch.
// The process environment is not exposed.
func ItemData(item models.Item, index int, executionID string) map[string]any {
	return map[string]any{
		"json":  item.JSON,
		"index": index,
		"execution": map[string]any{
			"id": executionID,
		},
	}
}

// NeedsTemplating reports whether the value is an expression, e.g. "={{ .json.q }}".
func NeedsTemplating(input string) bool {
	return strings.HasPrefix(input, ExpressionPrefix)
}

// ResolveParameter evaluates expressions inside a parameter value.
// Only strings starting with ExpressionPrefix are rendered, without the prefix.
// Strings stay strings when asString is set; otherwise the rendered text is
// converted to JSON, a number or a boolean when it looks like one.
// Maps and slices are resolved recursively.
func ResolveParameter(value any, data any, asString bool) (any, error) {
	switch v := value.(type) {
	case string:
		if !NeedsTemplating(v) {
			return v, nil
		}

		expr := strings.TrimPrefix(v, ExpressionPrefix)

		if asString {
			return RenderString(expr, data)
		}

		return Render(expr, data)
	case map[string]any:
		resolved := make(map[string]any, len(v))

		for key, inner := range v {
			r, err := ResolveParameter(inner, data, false)
			if err != nil {
				return nil, fmt.Errorf("parameter '%s': %w", key, err)
			}

			resolved[key] = r
		}

		return resolved, nil
	case []any:
		resolved := make([]any, len(v))

		for i, inner := range v {
			r, err := ResolveParameter(inner, data, false)
			if err != nil {
				return nil, err
			}

			resolved[i] = r
		}

		return resolved, nil
	default:
		return value, nil
	}
}

// RenderString executes the template and returns its raw text output.
func RenderString(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("parameter").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}
				num := make([]byte, 1)
				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
			"trim":  strings.TrimSpace,
			"lower": strings.ToLower,
			"upper": strings.ToUpper,
		}).
		Option("missingkey=zero").
		Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

func Render(templateStr string, data any) (any, error) {
	result, err := RenderString(templateStr, data)
	if err != nil {
		return nil, err
	}

	// Try to parse as JSON if it looks like JSON
	result = strings.TrimSpace(result)
	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}
