package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/operion-octagon/pkg/template"
	"github.com/xeipuuv/gojsonschema"
)

// ParameterError lists why node parameters do not match the node schema.
type ParameterError struct {
	NodeType string
	Problems []string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameters for node '%s': %s", e.NodeType, strings.Join(e.Problems, "; "))
}

// ValidateParameters checks params against the node schema. Expression values
// are resolved per item at execution time and are not checked here.
func (r *Registry) ValidateParameters(nodeType string, params map[string]any) error {
	factory, ok := r.nodeFactories[nodeType]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrNodeTypeNotRegistered, nodeType)
	}

	if params == nil {
		params = map[string]any{}
	}

	doc, templated := withoutExpressions(params)
	schema := maps.Clone(factory.Schema())

	if required, ok := schema["required"].([]any); ok {
		required = slices.DeleteFunc(slices.Clone(required), func(name any) bool {
			key, _ := name.(string)

			return templated[key]
		})

		if len(required) == 0 {
			delete(schema, "required")
		} else {
			schema["required"] = required
		}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate parameters for node '%s': %w", nodeType, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return &ParameterError{NodeType: nodeType, Problems: problems}
}

func withoutExpressions(params map[string]any) (map[string]any, map[string]bool) {
	doc := make(map[string]any, len(params))
	templated := map[string]bool{}

	for key, value := range params {
		switch v := value.(type) {
		case string:
			if template.NeedsTemplating(v) {
				templated[key] = true

				continue
			}
		case map[string]any:
			value, _ = withoutExpressions(v)
		}

		doc[key] = value
	}

	return doc, templated
}
