package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescription() NodeDescription {
	return NodeDescription{
		DisplayName: "Test",
		Name:        "test",
		Properties: []NodeProperty{
			{DisplayName: "Notice", Name: "notice", Type: PropertyTypeNotice},
			{
				DisplayName: "Mode",
				Name:        "mode",
				Type:        PropertyTypeOptions,
				Default:     "a",
				Options:     []PropertyOption{{Name: "A", Value: "a"}, {Name: "B", Value: "b"}},
			},
			{DisplayName: "Text", Name: "text", Type: PropertyTypeString, Required: true},
			{
				DisplayName: "Extra",
				Name:        "extra",
				Type:        PropertyTypeCollection,
				Default:     map[string]any{},
				Values: []NodeProperty{
					{DisplayName: "Flag", Name: "flag", Type: PropertyTypeBoolean, Default: false},
				},
			},
		},
	}
}

func TestNodeDescription_JSONSchema(t *testing.T) {
	schema := testDescription().JSONSchema()

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"text"}, schema.Required)
	require.NotNil(t, schema.AdditionalProperties)
	assert.False(t, *schema.AdditionalProperties)

	assert.NotContains(t, schema.Properties, "notice")
	assert.Equal(t, []any{"a", "b"}, schema.Properties["mode"].Enum)
	assert.Equal(t, "string", schema.Properties["text"].Type)

	extra := schema.Properties["extra"]
	require.NotNil(t, extra)
	assert.Equal(t, "object", extra.Type)
	assert.Equal(t, "boolean", extra.Properties["flag"].Type)
}

func TestNodeDescription_Property(t *testing.T) {
	p, ok := testDescription().Property("mode")
	require.True(t, ok)
	assert.Equal(t, "a", p.Default)

	_, ok = testDescription().Property("missing")
	assert.False(t, ok)
}

func TestItem_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewItem(2, map[string]any{"a": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"json":{"a":1},"pairedItem":{"item":2}}`, string(data))

	data, err = json.Marshal(ItemsFromJSON([]map[string]any{nil})[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"json":{}}`, string(data))
}

func TestItem_IsFailure(t *testing.T) {
	assert.True(t, NewItem(0, map[string]any{"error": true}).IsFailure())
	assert.False(t, NewItem(0, map[string]any{"analysis": "ok"}).IsFailure())
	assert.False(t, NewItem(0, map[string]any{"error": "text"}).IsFailure())
}

func TestCredentialData_String(t *testing.T) {
	creds := CredentialData{"apiKey": "k", "n": 1}

	v, err := creds.String("apiKey")
	require.NoError(t, err)
	assert.Equal(t, "k", v)

	_, err = creds.String("missing")
	assert.ErrorContains(t, err, "missing")

	_, err = creds.String("n")
	assert.ErrorContains(t, err, "must be a string")
}

func TestJSONSchema_Map(t *testing.T) {
	m := testDescription().JSONSchema().Map()

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, false, m["additionalProperties"])
	assert.Equal(t, []any{"text"}, m["required"])
}
