package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	githubapi "github.com/google/go-github/v75/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"
)

const (
	// GitHub allows 5000 requests/hour per token. Staying well under
	// that keeps a large-account sync from tripping secondary limits.
	githubRequestsPerSecond = 5
	githubBurst             = 10

	listPageSize = 100

	scopesHeader = "X-OAuth-Scopes"
)

// GithubClient implements Client against the GitHub REST API.
type GithubClient struct {
	apiURL string

	// One limiter per token; GitHub rate-limits per token, not per
	// client process.
	limiters *lru.Cache[string, *rate.Limiter]
}

func NewGithubClient(apiURL string) *GithubClient {
	limiters, err := lru.New[string, *rate.Limiter](128)
	if err != nil {
		// Only reachable with a non-positive size.
		panic("failed to create limiter cache: " + err.Error())
	}
	return &GithubClient{apiURL: apiURL, limiters: limiters}
}

func (c *GithubClient) limiterFor(token string) *rate.Limiter {
	if limiter, ok := c.limiters.Get(token); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(githubRequestsPerSecond), githubBurst)
	c.limiters.Add(token, limiter)
	return limiter
}

// Authenticate verifies the token against GET /user and captures the
// identity's login and granted scopes.
func (c *GithubClient) Authenticate(ctx context.Context, token string) (Session, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := githubapi.NewClient(oauth2.NewClient(ctx, ts))
	if c.apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(c.apiURL, c.apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", c.apiURL, err)
		}
	}

	limiter := c.limiterFor(token)
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, translateGithubError(err)
	}

	session := &githubSession{
		client:  client,
		limiter: limiter,
		login:   user.GetLogin(),
		scopes:  parseScopes(resp.Header.Get(scopesHeader)),
	}
	klog.V(2).Infof("Authenticated against github as %s with scopes %v", session.login, session.scopes)
	return session, nil
}

type githubSession struct {
	client  *githubapi.Client
	limiter *rate.Limiter
	login   string
	scopes  []string
}

func (s *githubSession) Login() string {
	return s.login
}

func (s *githubSession) Scopes() []string {
	return s.scopes
}

func (s *githubSession) ListRepositories(ctx context.Context) ([]RemoteRepository, error) {
	opts := &githubapi.RepositoryListByAuthenticatedUserOptions{
		ListOptions: githubapi.ListOptions{PerPage: listPageSize},
	}

	var out []RemoteRepository
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := s.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, translateGithubError(err)
		}
		for _, repo := range repos {
			out = append(out, RemoteRepository{
				Name:         repo.GetName(),
				Owner:        repo.GetOwner().GetLogin(),
				Organization: organizationName(repo),
				Private:      repo.GetPrivate(),
				Admin:        repo.GetPermissions()["admin"],
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (s *githubSession) ListDeployKeys(ctx context.Context, owner, name string) ([]RemoteDeployKey, error) {
	opts := &githubapi.ListOptions{PerPage: listPageSize}

	var out []RemoteDeployKey
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		keys, resp, err := s.client.Repositories.ListKeys(ctx, owner, name, opts)
		if err != nil {
			return nil, translateGithubError(err)
		}
		for _, key := range keys {
			out = append(out, RemoteDeployKey{
				Title: key.GetTitle(),
				Key:   key.GetKey(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func organizationName(repo *githubapi.Repository) *string {
	org := repo.GetOrganization()
	if org == nil {
		return nil
	}
	name := org.GetName()
	if name == "" {
		name = org.GetLogin()
	}
	if name == "" {
		return nil
	}
	return &name
}

func parseScopes(header string) []string {
	if header == "" {
		return nil
	}
	var scopes []string
	for _, s := range strings.Split(header, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func translateGithubError(err error) error {
	var rateErr *githubapi.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	var abuseErr *githubapi.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	var errResp *githubapi.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrBadCredentials, err)
		case http.StatusForbidden, http.StatusNotFound:
			// GitHub answers 404 (or 403) for resources the identity
			// cannot see, deploy keys on repos it lost admin on
			// included.
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return err
}
