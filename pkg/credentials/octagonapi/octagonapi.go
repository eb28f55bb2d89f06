// Package octagonapi defines the API key credential used by the Octagon node.
package octagonapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/template"
)

const (
	Name             = "octagonApi"
	DisplayName      = "Octagon API"
	DocumentationURL = "https://docs.octagonagents.com"
	SignupURL        = "https://app.octagonai.co/signup"

	// TestQuery is sent when verifying a key.
	TestQuery = "Get everything for Octagon AI"
)

var ErrMissingAPIKey = errors.New("API key is required")

// Credential authenticates requests with a bearer API key.
type Credential struct {
	client *octagon.Client
}

// New returns the credential type. Tests are sent through client in the legacy format.
func New(client *octagon.Client) *Credential {
	if client == nil {
		client = octagon.NewClient()
	}

	return &Credential{client: client}
}

func (c *Credential) Describe() models.CredentialDescription {
	return models.CredentialDescription{
		Name:             Name,
		DisplayName:      DisplayName,
		DocumentationURL: DocumentationURL,
		Properties: []models.NodeProperty{
			{
				DisplayName: fmt.Sprintf(`Get your free Octagon API Key at: <a href="%s" target="_blank">app.octagonai.co/signup</a>`, SignupURL),
				Name:        "notice",
				Type:        models.PropertyTypeNotice,
				Default:     "",
			},
			{
				DisplayName: "API Key",
				Name:        "apiKey",
				Type:        models.PropertyTypeString,
				TypeOptions: map[string]any{"password": true},
				Default:     "",
				Required:    true,
				Placeholder: "oct_1234567890abcdef...",
				Description: "Your Octagon API key from Settings → API Keys in your account",
			},
		},
		Authenticate: models.CredentialAuthenticate{
			Type: "generic",
			Headers: map[string]string{
				"Authorization": "Bearer {{ .apiKey }}",
			},
		},
		Test: &models.CredentialTestRequest{
			BaseURL: c.client.BaseURL(),
			URL:     octagon.ResponsesPath,
			Method:  http.MethodPost,
			Body: map[string]any{
				"query": TestQuery,
				"agent": octagon.DefaultAgent,
			},
		},
	}
}

// Authenticate renders the authentication headers with the credential fields.
func (c *Credential) Authenticate(creds models.CredentialData, req *http.Request) error {
	apiKey, err := creds.String("apiKey")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingAPIKey, err)
	}

	if strings.TrimSpace(apiKey) == "" {
		return ErrMissingAPIKey
	}

	for header, value := range c.Describe().Authenticate.Headers {
		rendered, err := template.RenderString(value, map[string]any(creds))
		if err != nil {
			return fmt.Errorf("failed to render header %s: %w", header, err)
		}

		req.Header.Set(header, rendered)
	}

	return nil
}

// Authenticator binds creds for use by the API client.
func (c *Credential) Authenticator(creds models.CredentialData) octagon.Authenticator {
	return func(req *http.Request) error {
		return c.Authenticate(creds, req)
	}
}

// Test sends the verification query and reports whether the key was accepted.
func (c *Credential) Test(ctx context.Context, creds models.CredentialData) models.CredentialTestResult {
	test := c.Describe().Test

	_, err := c.client.Post(ctx, c.Authenticator(creds), test.URL, test.Body)
	if err != nil {
		return models.CredentialTestResult{
			Status:  models.CredentialTestError,
			Message: err.Error(),
		}
	}

	return models.CredentialTestResult{
		Status:  models.CredentialTestOK,
		Message: "Connection successful",
	}
}
