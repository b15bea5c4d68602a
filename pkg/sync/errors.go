package sync

import (
	"errors"

	"github.com/girbons/tuttle/pkg/model"
)

var (
	// ErrTokenNotFound means no stored token matched the reference.
	ErrTokenNotFound = errors.New("token not found")

	// ErrProviderNotFound means the token references a provider record
	// that does not exist.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAuthentication means the remote service rejected the token.
	// Distinct from not-found so callers prompt for re-authentication
	// instead of reprovisioning a record.
	ErrAuthentication = errors.New("can't login, invalid token")

	// ErrInsufficientScope means the token is valid but does not grant
	// repository-read access.
	ErrInsufficientScope = errors.New("token is missing the required scope")

	// ErrAmbiguousRecord is surfaced unchanged from the cache layer:
	// duplicate rows matched a reconciliation key, fix the database.
	ErrAmbiguousRecord = model.ErrAmbiguousRecord
)
