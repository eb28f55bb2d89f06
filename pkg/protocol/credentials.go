package protocol

import (
	"context"
	"net/http"

	"github.com/dukex/operion-octagon/pkg/models"
)

// CredentialType describes a kind of credential and how it authenticates requests.
type CredentialType interface {
	Describe() models.CredentialDescription

	// Authenticate applies the credential to an outgoing request
	Authenticate(creds models.CredentialData, req *http.Request) error

	// Test checks the credential against the remote service
	Test(ctx context.Context, creds models.CredentialData) models.CredentialTestResult
}

// CredentialStore resolves stored credentials by type name.
type CredentialStore interface {
	Get(ctx context.Context, name string) (models.CredentialData, error)
}
