package octagon

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RequestFormat selects the JSON shape of the request body.
type RequestFormat string

const (
	// FormatResponses sends {"model": agent, "input": query}.
	FormatResponses RequestFormat = "responses"
	// FormatLegacy sends {"query": query, "agent": agent}.
	FormatLegacy RequestFormat = "legacy"
)

var ErrUnknownRequestFormat = errors.New("unknown request format")

func ParseRequestFormat(s string) (RequestFormat, error) {
	switch RequestFormat(s) {
	case FormatResponses, "":
		return FormatResponses, nil
	case FormatLegacy:
		return FormatLegacy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRequestFormat, s)
	}
}

// Request is a single query addressed to one agent.
type Request struct {
	Agent string
	Query string
}

type responsesBody struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type legacyBody struct {
	Query string `json:"query"`
	Agent string `json:"agent"`
}

// Body returns the request payload in the given format.
func (r Request) Body(format RequestFormat) any {
	if format == FormatLegacy {
		return legacyBody{Query: r.Query, Agent: r.Agent}
	}

	return responsesBody{Model: r.Agent, Input: r.Query}
}

// Response is the decoded reply. Every field is optional and may hold any
// JSON value; the accessors fall back when a value has an unexpected shape.
type Response struct {
	Output any `json:"output,omitempty"`
	Usage  any `json:"usage,omitempty"`
}

var ErrResponseNotObject = errors.New("response body is not a JSON object")

// DecodeResponse parses a response body. Only bodies that are not valid JSON
// or not a JSON object are rejected.
func DecodeResponse(body []byte) (*Response, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrResponseNotObject
		}

		return nil, err
	}

	if fields == nil {
		return nil, ErrResponseNotObject
	}

	return &Response{Output: fields["output"], Usage: fields["usage"]}, nil
}

func firstObject(value any) (map[string]any, bool) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	obj, ok := list[0].(map[string]any)

	return obj, ok
}

func (r *Response) firstContent() (map[string]any, bool) {
	if r == nil {
		return nil, false
	}

	output, ok := firstObject(r.Output)
	if !ok {
		return nil, false
	}

	return firstObject(output["content"])
}

// Analysis is the text of the first content entry of the first output, or "".
func (r *Response) Analysis() string {
	content, ok := r.firstContent()
	if !ok {
		return ""
	}

	text, _ := content["text"].(string)

	return text
}

// Citations are the annotations of the first content entry, never nil.
func (r *Response) Citations() []any {
	content, ok := r.firstContent()
	if !ok {
		return []any{}
	}

	annotations, ok := content["annotations"].([]any)
	if !ok {
		return []any{}
	}

	return annotations
}

// UsageData is the top level usage block, or an empty object when absent.
func (r *Response) UsageData() any {
	if r == nil || r.Usage == nil {
		return map[string]any{}
	}

	return r.Usage
}
