package template

import (
	"testing"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SimpleExpression(t *testing.T) {
	data := map[string]any{
		"name":  "John",
		"age":   30,
		"isNew": true,
	}

	// Test simple field access
	result, err := Render("{{ .name }}", data)
	require.NoError(t, err)
	assert.Equal(t, "John", result)

	// Test boolean expression
	result, err = Render("{{ .isNew }}", data)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	// Test number field - always map to float
	result, err = Render("{{ .age }}", data)
	require.NoError(t, err)
	assert.Equal(t, 30.0, result)
}

func TestRender_ComplexExpression(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{
			"name":  "Alice",
			"email": "alice@example.com",
		},
		"orders": []any{
			map[string]any{"id": 1, "total": 100.50},
			map[string]any{"id": 2, "total": 75.25},
		},
	}

	// Test nested field access
	result, err := Render("{{ .user.name }}", data)
	require.NoError(t, err)
	assert.Equal(t, "Alice", result)

	// Test object construction
	result, err = Render(`{
		"user_name": "{{ .user.name }}",
		"total_orders": {{ len .orders }}
	}`, data)
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)

	require.True(t, ok)
	assert.Equal(t, "Alice", resultMap["user_name"])
	assert.Equal(t, 2.0, resultMap["total_orders"])
}

func TestRender_WithStepResults(t *testing.T) {
	// Simulate execution context step results
	data := map[string]any{
		"api_call": map[string]any{
			"status": 200,
			"body": map[string]any{
				"user_id":  123,
				"username": "testuser",
			},
		},
		"validation": map[string]any{
			"valid":  true,
			"errors": []any{},
		},
	}

	// Test accessing step results
	result, err := Render("{{ .api_call.body.username }}", data)
	require.NoError(t, err)
	assert.Equal(t, "testuser", result)

	// Test conditional expression
	result, err = Render("{{ if eq .api_call.status 200 }}success{{ else }}failed{{ end }}", data)
	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestRender_ErrorHandling(t *testing.T) {
	data := map[string]any{
		"test": "value",
	}

	// Test invalid template expression
	_, err := Render("{ invalid..expression }}", data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse json")

	// Test reference to non-existent field (actually errors in template)
	_, err = Render("{{ nonexistent.field }}", data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "function \"nonexistent\" not defined")
}

func TestRender_StringInterpolation(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{
			"name": "John",
			"id":   123,
		},
		"action": "login",
	}

	// Test string construction
	result, err := Render("User {{.user.name}} performed {{.action}}", data)
	require.NoError(t, err)
	assert.Equal(t, "User John performed login", result)

	// Test URL construction
	result, err = Render("https://api.example.com/users/{{.user.id}}", data)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/123", result)
}

func TestItemData_HidesEnvironment(t *testing.T) {
	t.Setenv("OCTAGON_TEST_SECRET", "postgres://admin:s3cret@db/prod")

	data := ItemData(models.Item{JSON: map[string]any{}}, 0, "exec-1")
	assert.NotContains(t, data, "env")

	result, err := RenderString("{{ .env.OCTAGON_TEST_SECRET }}", data)
	assert.Error(t, err)
	assert.NotContains(t, result, "s3cret")
}

func TestItemData_ItemFields(t *testing.T) {
	item := models.Item{JSON: map[string]any{"question": "What is AAPL revenue?", "ticker": "AAPL"}}
	data := ItemData(item, 3, "exec-1")

	result, err := RenderString("{{ .json.question }}", data)
	require.NoError(t, err)
	assert.Equal(t, "What is AAPL revenue?", result)

	result, err = RenderString("item {{ .index }} of {{ .execution.id }}", data)
	require.NoError(t, err)
	assert.Equal(t, "item 3 of exec-1", result)

	result, err = RenderString("{{ .json.missing }}", data)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveParameter(t *testing.T) {
	data := ItemData(models.Item{JSON: map[string]any{"year": 2024, "usage": true}}, 0, "")

	result, err := ResolveParameter("=Revenue in {{ .json.year }}", data, true)
	require.NoError(t, err)
	assert.Equal(t, "Revenue in 2024", result)

	result, err = ResolveParameter("={{ .json.year }}", data, true)
	require.NoError(t, err)
	assert.Equal(t, "2024", result)

	result, err = ResolveParameter("={{ .json.year }}", data, false)
	require.NoError(t, err)
	assert.Equal(t, 2024.0, result)

	result, err = ResolveParameter(map[string]any{
		"includeUsage": "={{ .json.usage }}",
		"static":       false,
	}, data, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"includeUsage": true, "static": false}, result)

	result, err = ResolveParameter("plain text", data, false)
	require.NoError(t, err)
	assert.Equal(t, "plain text", result)

	_, err = ResolveParameter([]any{"={{ broken"}, data, false)
	assert.Error(t, err)
}

func TestResolveParameter_LiteralBraces(t *testing.T) {
	data := ItemData(models.Item{JSON: map[string]any{"year": 2024}}, 0, "")

	for _, literal := range []string{
		"Explain the {{ revenue }} line",
		"{{ .json.year }}",
		"{{ broken",
	} {
		result, err := ResolveParameter(literal, data, true)
		require.NoError(t, err, literal)
		assert.Equal(t, literal, result)
	}
}

func TestNeedsTemplating(t *testing.T) {
	assert.True(t, NeedsTemplating("={{ .json.q }}"))
	assert.True(t, NeedsTemplating("=plain"))
	assert.False(t, NeedsTemplating("{{ .json.q }}"))
	assert.False(t, NeedsTemplating("a = b"))
	assert.False(t, NeedsTemplating(""))
}
