// Package sync implements the synchronization run: authenticate a
// stored token against its provider, validate scope, reconcile the
// remote repository list into the local cache, and fully replace the
// cached deploy keys for repositories the identity administers.
//
// A run is a single sequential pass with no retries; failed runs are
// safe to re-invoke because every write is an idempotent upsert or a
// full replacement. Concurrent runs for the same user race on the
// delete-then-recreate deploy-key step, so callers must serialize runs
// per user.
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/girbons/tuttle/pkg/common"
	"github.com/girbons/tuttle/pkg/model"
	"github.com/girbons/tuttle/pkg/remote"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// TokenRef tells a run which stored token to use: either the secret
// value itself, or the owning user (optionally narrowed to a provider
// by name).
type TokenRef struct {
	Value    string
	UserID   uint
	Provider string
}

type Synchronizer struct {
	db       *gorm.DB
	factory  remote.Factory
	reporter Reporter
}

type Option func(*Synchronizer)

// WithReporter replaces the default klog-backed reporter.
func WithReporter(r Reporter) Option {
	return func(s *Synchronizer) {
		s.reporter = r
	}
}

func New(db *gorm.DB, factory remote.Factory, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		db:       db,
		factory:  factory,
		reporter: klogReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one synchronization pass for the referenced token. Any
// failure aborts the remaining steps; records written before the
// failing step remain.
func (s *Synchronizer) Run(ctx context.Context, ref TokenRef) error {
	runID := uuid.NewString()
	start := time.Now()
	syncCount.Inc()

	stage, err := s.run(ctx, runID, ref)
	syncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		syncFailed.WithLabelValues(stage).Inc()
		s.reporter.Errorf("[%s] sync failed at %s: %v", runID, stage, err)
		return err
	}
	return nil
}

func (s *Synchronizer) run(ctx context.Context, runID string, ref TokenRef) (string, error) {
	token, err := s.resolveToken(ref)
	if err != nil {
		return "resolve_token", err
	}

	var provider model.Provider
	if err := s.db.First(&provider, token.ProviderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "resolve_provider", ErrProviderNotFound
		}
		return "resolve_provider", err
	}

	client, err := s.factory(provider.Name)
	if err != nil {
		return "resolve_provider", err
	}

	session, err := client.Authenticate(ctx, token.Value)
	if err != nil {
		if errors.Is(err, remote.ErrBadCredentials) {
			return "authenticate", fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "authenticate", err
	}
	s.reporter.Infof("[%s] authenticated as %s on %s", runID, session.Login(), provider.Name)

	if !lo.Contains(session.Scopes(), common.RequiredScope) {
		return "validate_scope", fmt.Errorf("%w: %q not in %v", ErrInsufficientScope, common.RequiredScope, session.Scopes())
	}

	repos, err := session.ListRepositories(ctx)
	if err != nil {
		return "list_repositories", err
	}

	created := 0
	for _, repo := range repos {
		key := model.RepositoryKey{
			Name:         repo.Name,
			Owner:        repo.Owner,
			Organization: organizationValue(repo.Organization),
			IsPrivate:    repo.Private,
			IsUserAdmin:  repo.Admin,
			UserID:       token.UserID,
			ProviderID:   token.ProviderID,
		}
		_, result, err := model.ReconcileRepository(s.db, key)
		if err != nil {
			return "reconcile_repositories", err
		}
		if result == model.ReconcileCreated {
			created++
		}
	}
	syncRepositories.Add(float64(len(repos)))
	s.reporter.Infof("[%s] reconciled %d repositories (%d new)", runID, len(repos), created)

	keyCount, err := s.replaceDeployKeys(ctx, runID, session, token.UserID, repos)
	if err != nil {
		return "replace_deploy_keys", err
	}
	syncDeployKeys.Add(float64(keyCount))
	s.reporter.Infof("[%s] cached %d deploy keys", runID, keyCount)
	return "", nil
}

func (s *Synchronizer) resolveToken(ref TokenRef) (*model.Token, error) {
	var token *model.Token
	var err error
	switch {
	case ref.Value != "":
		token, err = model.FindTokenByValue(s.db, ref.Value)
	case ref.UserID != 0:
		token, err = model.FindTokenForUser(s.db, ref.UserID, ref.Provider)
	default:
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

type repositoryKeys struct {
	repoName string
	keys     []remote.RemoteDeployKey
}

// replaceDeployKeys fetches the keys of every admin repository first,
// then swaps the user's cached set in one transaction so a failed run
// never leaves the cache half-written.
func (s *Synchronizer) replaceDeployKeys(ctx context.Context, runID string, session remote.Session, userID uint, repos []remote.RemoteRepository) (int, error) {
	adminRepos := lo.Filter(repos, func(r remote.RemoteRepository, _ int) bool {
		return r.Admin
	})

	var fetched []repositoryKeys
	total := 0
	for _, repo := range adminRepos {
		keys, err := session.ListDeployKeys(ctx, repo.Owner, repo.Name)
		if err != nil {
			// Admin rights can vanish between the repository listing
			// and the key fetch; the provider then answers not-found.
			// That is zero keys, not a failure.
			if errors.Is(err, remote.ErrNotFound) {
				s.reporter.Infof("[%s] keys for %s/%s unreachable, treating as empty", runID, repo.Owner, repo.Name)
				continue
			}
			return 0, err
		}
		if len(keys) == 0 {
			continue
		}
		fetched = append(fetched, repositoryKeys{repoName: repo.Name, keys: keys})
		total += len(keys)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := model.DeleteDeployKeysForUser(tx, userID); err != nil {
			return err
		}
		for _, rk := range fetched {
			local, err := model.FindRepositoryForUserByName(tx, userID, rk.repoName)
			if err != nil {
				return fmt.Errorf("looking up repository %q: %w", rk.repoName, err)
			}
			for _, key := range rk.keys {
				deployKey := model.DeployKey{
					Title:        key.Title,
					Key:          key.Key,
					RepositoryID: local.ID,
				}
				if err := tx.Create(&deployKey).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func organizationValue(org *string) sql.NullString {
	if org == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *org, Valid: true}
}
