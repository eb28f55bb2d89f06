package models

import "encoding/json"

// JSONSchema represents a JSON Schema for parameter validation
type JSONSchema struct {
	Type                 string               `json:"type"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	Required             []string             `json:"required,omitempty"`
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
	AdditionalProperties *bool                `json:"additionalProperties,omitempty"`
}

// Property represents a JSON Schema property
type Property struct {
	Type                 string               `json:"type"`
	Description          string               `json:"description,omitempty"`
	Enum                 []any                `json:"enum,omitempty"`
	Default              any                  `json:"default,omitempty"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	AdditionalProperties *bool                `json:"additionalProperties,omitempty"`
}

// JSONSchema derives a parameter schema from the node's properties.
// Notice properties carry no value and are skipped. Required string
// parameters are only checked for presence: expressions are resolved per item.
func (d NodeDescription) JSONSchema() *JSONSchema {
	closed := false
	schema := &JSONSchema{
		Type:                 "object",
		Title:                d.DisplayName,
		Description:          d.Description,
		Properties:           map[string]*Property{},
		AdditionalProperties: &closed,
	}

	for _, p := range d.Properties {
		prop, ok := propertySchema(p)
		if !ok {
			continue
		}

		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return schema
}

func propertySchema(p NodeProperty) (*Property, bool) {
	prop := &Property{Description: p.Description, Default: p.Default}

	switch p.Type {
	case PropertyTypeNotice:
		return nil, false
	case PropertyTypeString:
		prop.Type = "string"
	case PropertyTypeBoolean:
		prop.Type = "boolean"
	case PropertyTypeNumber:
		prop.Type = "number"
	case PropertyTypeOptions:
		prop.Type = "string"
		for _, o := range p.Options {
			prop.Enum = append(prop.Enum, o.Value)
		}
	case PropertyTypeCollection:
		closed := false
		prop.Type = "object"
		prop.AdditionalProperties = &closed
		prop.Properties = map[string]*Property{}

		for _, v := range p.Values {
			if child, ok := propertySchema(v); ok {
				prop.Properties[v.Name] = child
			}
		}
	default:
		return nil, false
	}

	return prop, true
}

// Map returns the schema as a generic JSON object.
func (s *JSONSchema) Map() map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}

	return out
}
