package model

import (
	"database/sql"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, Migrate(db))
	return db
}

func seedUserAndProvider(t *testing.T, db *gorm.DB, username string) (User, Provider) {
	t.Helper()
	user := User{Username: username}
	require.NoError(t, db.Create(&user).Error)
	provider := Provider{Name: "github"}
	require.NoError(t, db.Where("name = ?", provider.Name).FirstOrCreate(&provider).Error)
	return user, provider
}

func TestReconcileRepository(t *testing.T) {
	db := newTestDB(t, "reconcile")
	user, provider := seedUserAndProvider(t, db, "girbons")

	key := RepositoryKey{
		Name:        "test",
		Owner:       "user test",
		IsPrivate:   false,
		IsUserAdmin: true,
		UserID:      user.ID,
		ProviderID:  provider.ID,
	}

	t.Run("Create then find", func(t *testing.T) {
		repo, result, err := ReconcileRepository(db, key)
		require.NoError(t, err)
		assert.Equal(t, ReconcileCreated, result)
		assert.NotZero(t, repo.ID)
		assert.False(t, repo.Organization.Valid)

		again, result, err := ReconcileRepository(db, key)
		require.NoError(t, err)
		assert.Equal(t, ReconcileFound, result)
		assert.Equal(t, repo.ID, again.ID)

		var count int64
		db.Model(&Repository{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Organization is part of the key", func(t *testing.T) {
		orgKey := key
		orgKey.Organization = sql.NullString{String: "acme", Valid: true}

		repo, result, err := ReconcileRepository(db, orgKey)
		require.NoError(t, err)
		assert.Equal(t, ReconcileCreated, result)
		assert.Equal(t, "acme", repo.Organization.String)

		// The no-org record from the previous subtest must not be
		// conflated with the org one.
		var count int64
		db.Model(&Repository{}).Where("name = ?", "test").Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Duplicate rows are ambiguous", func(t *testing.T) {
		dup := Repository{
			Name:        key.Name,
			Owner:       key.Owner,
			IsPrivate:   key.IsPrivate,
			IsUserAdmin: key.IsUserAdmin,
			UserID:      key.UserID,
			ProviderID:  key.ProviderID,
		}
		require.NoError(t, db.Create(&dup).Error)

		_, _, err := ReconcileRepository(db, key)
		assert.ErrorIs(t, err, ErrAmbiguousRecord)
	})
}

func TestFindRepositoryForUserByName(t *testing.T) {
	db := newTestDB(t, "findbyname")
	user, provider := seedUserAndProvider(t, db, "girbons")
	other, _ := seedUserAndProvider(t, db, "someone-else")

	repo := Repository{Name: "test", Owner: "girbons", UserID: user.ID, ProviderID: provider.ID}
	require.NoError(t, db.Create(&repo).Error)

	t.Run("Found within user scope", func(t *testing.T) {
		found, err := FindRepositoryForUserByName(db, user.ID, "test")
		require.NoError(t, err)
		assert.Equal(t, repo.ID, found.ID)
	})

	t.Run("Other users do not leak in", func(t *testing.T) {
		_, err := FindRepositoryForUserByName(db, other.ID, "test")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Duplicate names are ambiguous", func(t *testing.T) {
		dup := Repository{Name: "test", Owner: "acme", UserID: user.ID, ProviderID: provider.ID}
		require.NoError(t, db.Create(&dup).Error)

		_, err := FindRepositoryForUserByName(db, user.ID, "test")
		assert.ErrorIs(t, err, ErrAmbiguousRecord)
	})
}

func TestDeployKeyLifecycle(t *testing.T) {
	db := newTestDB(t, "deploykeys")
	user, provider := seedUserAndProvider(t, db, "girbons")
	other, _ := seedUserAndProvider(t, db, "someone-else")

	repo := Repository{Name: "test", Owner: "girbons", UserID: user.ID, ProviderID: provider.ID}
	require.NoError(t, db.Create(&repo).Error)
	otherRepo := Repository{Name: "other", Owner: "someone-else", UserID: other.ID, ProviderID: provider.ID}
	require.NoError(t, db.Create(&otherRepo).Error)

	require.NoError(t, db.Create(&DeployKey{Title: "test key", Key: "123456", RepositoryID: repo.ID}).Error)
	require.NoError(t, db.Create(&DeployKey{Title: "ci key", Key: "abcdef", RepositoryID: repo.ID}).Error)
	require.NoError(t, db.Create(&DeployKey{Title: "kept", Key: "zzz", RepositoryID: otherRepo.ID}).Error)

	t.Run("Bulk delete is scoped to the user", func(t *testing.T) {
		require.NoError(t, DeleteDeployKeysForUser(db, user.ID))

		var count int64
		db.Model(&DeployKey{}).Count(&count)
		assert.Equal(t, int64(1), count)

		var kept DeployKey
		require.NoError(t, db.First(&kept).Error)
		assert.Equal(t, otherRepo.ID, kept.RepositoryID)
	})

	t.Run("Deleting a repository cascades to its keys", func(t *testing.T) {
		require.NoError(t, db.Delete(&otherRepo, otherRepo.ID).Error)

		var count int64
		db.Model(&DeployKey{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestUserDeleteCascades(t *testing.T) {
	db := newTestDB(t, "cascade")
	user, provider := seedUserAndProvider(t, db, "girbons")

	repo := Repository{Name: "test", Owner: "girbons", UserID: user.ID, ProviderID: provider.ID}
	require.NoError(t, db.Create(&repo).Error)
	require.NoError(t, db.Create(&DeployKey{Title: "test key", Key: "123456", RepositoryID: repo.ID}).Error)
	require.NoError(t, db.Create(&Token{Title: "t", Value: "secret", UserID: user.ID, ProviderID: provider.ID}).Error)

	require.NoError(t, db.Delete(&user, user.ID).Error)

	var repos, keys, tokens int64
	db.Model(&Repository{}).Count(&repos)
	db.Model(&DeployKey{}).Count(&keys)
	db.Model(&Token{}).Count(&tokens)
	assert.Equal(t, int64(0), repos)
	assert.Equal(t, int64(0), keys)
	assert.Equal(t, int64(0), tokens)
}
