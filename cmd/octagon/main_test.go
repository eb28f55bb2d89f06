package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func newOctagonServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid api key"}`))

			return
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []any{
				map[string]any{"content": []any{
					map[string]any{"text": "analysis for " + asString(body["input"]), "annotations": []any{}},
				}},
			},
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func asString(v any) string {
	s, _ := v.(string)

	return s
}

// runApp runs the CLI with the fake API configured and returns stdout.
func runApp(t *testing.T, server *httptest.Server, apiKey, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.Reader = strings.NewReader(stdin)

	base := []string{
		"octagon",
		"--env-file", "",
		"--plugins-path", "",
		"--log-level", "error",
		"--octagon-base-url", server.URL,
		"--octagon-api-key", apiKey,
	}

	err := app.Run(context.Background(), append(base, args...))

	return out.String(), err
}

func TestAgentsCommand(t *testing.T) {
	out, err := runApp(t, newOctagonServer(t), testAPIKey, "", "agents")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "octagon-sec-agent")
	assert.Contains(t, out, "public_market")
}

func TestDescribeCommand(t *testing.T) {
	server := newOctagonServer(t)

	out, err := runApp(t, server, testAPIKey, "", "describe")
	require.NoError(t, err)

	var description map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &description))
	assert.Equal(t, "Octagon", description["displayName"])
	assert.Equal(t, "octagonAgents", description["name"])

	out, err = runApp(t, server, testAPIKey, "", "describe", "--schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "object", schema["type"])

	_, err = runApp(t, server, testAPIKey, "", "describe", "slack")
	require.ErrorContains(t, err, "unknown node type")
}

func TestRunCommand_ItemsFromStdin(t *testing.T) {
	out, err := runApp(t, newOctagonServer(t), testAPIKey,
		`[{"ticker":"AAPL"},{"ticker":"MSFT"}]`,
		"run", "--input", "-", "--agent", "octagon-sec-agent", "--query", "={{ .json.ticker }} revenue",
	)
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)

	first := items[0]["json"].(map[string]any)
	assert.Equal(t, "analysis for AAPL revenue", first["analysis"])
	assert.Equal(t, "octagon-sec-agent", first["agent"])

	second := items[1]["json"].(map[string]any)
	assert.Equal(t, "MSFT revenue", second["query"])
}

func TestRunCommand_MissingKeyYieldsFailureItem(t *testing.T) {
	out, err := runApp(t, newOctagonServer(t), "", "", "run", "--query", "AAPL revenue")
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)

	item := items[0]["json"].(map[string]any)
	assert.Equal(t, true, item["error"])
	assert.Contains(t, item["message"], "failed to load credentials")
	assert.Equal(t, "AAPL revenue", item["query"])
}

func TestRunCommand_InvalidParameters(t *testing.T) {
	_, err := runApp(t, newOctagonServer(t), testAPIKey, "", "run", "--agent", "octagon-crystal-ball", "--query", "AAPL")
	require.ErrorContains(t, err, "invalid parameters")

	_, err = runApp(t, newOctagonServer(t), testAPIKey, "", "run", "--parameters", "{not json")
	require.ErrorContains(t, err, "invalid --parameters")
}

func TestCredentialsTestCommand(t *testing.T) {
	server := newOctagonServer(t)

	out, err := runApp(t, server, testAPIKey, "", "credentials", "test")
	require.NoError(t, err)
	assert.Equal(t, "OK: Connection successful\n", out)

	out, err = runApp(t, server, "wrong-key", "", "credentials", "test")
	require.ErrorIs(t, err, ErrCredentialTestFailed)
	assert.Contains(t, out, "Error: API request failed with status 401")
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "empty input runs once", input: "  ", expected: 1},
		{name: "single object", input: `{"ticker":"AAPL"}`, expected: 1},
		{name: "array of objects", input: `[{"a":1},{"a":2},{"a":3}]`, expected: 3},
		{name: "array of scalars", input: `[1,2]`, wantErr: true},
		{name: "malformed", input: `{"a":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := parseItems([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)

				return
			}

			require.NoError(t, err)
			assert.Len(t, items, tt.expected)
		})
	}
}
