// Package remote wraps a source-hosting provider's API behind a small
// client interface so the synchronizer never talks to a provider SDK
// directly. GitHub is the only implementation; additional providers
// plug in through Factory.
package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/girbons/tuttle/pkg/common"
)

// RemoteRepository is one repository as reported by the provider for
// the authenticated identity. Organization is nil when the repository
// does not belong to an organization.
type RemoteRepository struct {
	Name         string
	Owner        string
	Organization *string
	Private      bool
	Admin        bool
}

// RemoteDeployKey is one deploy key registered on a remote repository.
type RemoteDeployKey struct {
	Title string
	Key   string
}

// Session is an authenticated API session for one token.
type Session interface {
	// Login returns the authenticated identity's login name.
	Login() string
	// Scopes returns the scopes granted to the session's token,
	// captured during authentication.
	Scopes() []string
	ListRepositories(ctx context.Context) ([]RemoteRepository, error)
	// ListDeployKeys returns the keys on one repository. Only
	// meaningful when the identity is admin on it; otherwise the
	// provider answers ErrNotFound.
	ListDeployKeys(ctx context.Context, owner, name string) ([]RemoteDeployKey, error)
}

// Client authenticates tokens against one provider.
type Client interface {
	Authenticate(ctx context.Context, token string) (Session, error)
}

// Factory resolves the client for a provider name. The extension point
// for providers beyond GitHub.
type Factory func(providerName string) (Client, error)

// DefaultFactory knows the built-in providers.
func DefaultFactory(providerName string) (Client, error) {
	switch strings.ToLower(providerName) {
	case "github":
		return NewGithubClient(common.GithubAPIURL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, providerName)
	}
}
