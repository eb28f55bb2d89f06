package models

import "fmt"

// CredentialData holds the decrypted fields of a stored credential.
type CredentialData map[string]any

// String returns the field as a string, or an error when it is missing or not a string.
func (c CredentialData) String(field string) (string, error) {
	raw, ok := c[field]
	if !ok {
		return "", fmt.Errorf("credential field '%s' is missing", field)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("credential field '%s' must be a string", field)
	}

	return value, nil
}

// CredentialTestResult reports whether a credential was accepted by the remote service.
type CredentialTestResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	CredentialTestOK    = "OK"
	CredentialTestError = "Error"
)

// CredentialDescription describes a credential type to the host editor.
type CredentialDescription struct {
	Name             string                 `json:"name"`
	DisplayName      string                 `json:"displayName"`
	DocumentationURL string                 `json:"documentationUrl,omitempty"`
	Properties       []NodeProperty         `json:"properties"`
	Authenticate     CredentialAuthenticate `json:"authenticate"`
	Test             *CredentialTestRequest `json:"test,omitempty"`
}

// CredentialAuthenticate lists the headers a generic credential adds to requests.
// Header values may reference credential fields as {{ .apiKey }}.
type CredentialAuthenticate struct {
	Type    string            `json:"type"`
	Headers map[string]string `json:"headers"`
}

// CredentialTestRequest is the request used to verify a credential.
type CredentialTestRequest struct {
	BaseURL string         `json:"baseURL"`
	URL     string         `json:"url"`
	Method  string         `json:"method"`
	Body    map[string]any `json:"body,omitempty"`
}
