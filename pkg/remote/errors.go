package remote

import "errors"

var (
	// ErrBadCredentials means the provider rejected the token.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrNotFound means the requested resource is unreachable for the
	// authenticated identity. For deploy-key listings this is an
	// expected transient state (admin rights revoked mid-run), not a
	// system fault.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is retryable; the provider throttled us.
	ErrRateLimited = errors.New("rate limited by provider")

	ErrUnsupportedProvider = errors.New("unsupported provider")
)
