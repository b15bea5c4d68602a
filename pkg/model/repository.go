package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Repository is a synchronized snapshot of a remote repository owned by
// the user. Organization is NULL when the remote repository has no
// organization; an empty string is never stored, so "no organization"
// and "value present" stay distinguishable.
type Repository struct {
	Model
	Name         string         `json:"name" gorm:"type:varchar(255);not null;index"`
	Owner        string         `json:"owner" gorm:"type:varchar(255);not null"`
	Organization sql.NullString `json:"organization" gorm:"type:varchar(255)"`
	IsPrivate    bool           `json:"is_private"`
	IsUserAdmin  bool           `json:"is_user_admin"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	ProviderID   uint           `json:"provider_id" gorm:"not null"`

	// Relationships
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Provider Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Repository) TableName() string {
	return "repositories"
}

// RepositoryKey is the full-field reconciliation key used to match a
// remote repository against the local cache. The admin flag and the
// organization (including its absence) are part of the key so that
// repositories differing only in org membership are not conflated.
type RepositoryKey struct {
	Name         string
	Owner        string
	Organization sql.NullString
	IsPrivate    bool
	IsUserAdmin  bool
	UserID       uint
	ProviderID   uint
}

// ReconcileResult tags the outcome of ReconcileRepository.
type ReconcileResult int

const (
	ReconcileFound ReconcileResult = iota
	ReconcileCreated
)

// ReconcileRepository gets or creates the repository matching the key.
// More than one existing match returns ErrAmbiguousRecord and writes
// nothing.
func ReconcileRepository(db *gorm.DB, key RepositoryKey) (*Repository, ReconcileResult, error) {
	query := db.Where(
		"name = ? AND owner = ? AND is_private = ? AND is_user_admin = ? AND user_id = ? AND provider_id = ?",
		key.Name, key.Owner, key.IsPrivate, key.IsUserAdmin, key.UserID, key.ProviderID,
	)
	if key.Organization.Valid {
		query = query.Where("organization = ?", key.Organization.String)
	} else {
		query = query.Where("organization IS NULL")
	}

	var matches []Repository
	if err := query.Find(&matches).Error; err != nil {
		return nil, ReconcileFound, err
	}

	switch len(matches) {
	case 0:
		repo := Repository{
			Name:         key.Name,
			Owner:        key.Owner,
			Organization: key.Organization,
			IsPrivate:    key.IsPrivate,
			IsUserAdmin:  key.IsUserAdmin,
			UserID:       key.UserID,
			ProviderID:   key.ProviderID,
		}
		if err := db.Create(&repo).Error; err != nil {
			return nil, ReconcileCreated, err
		}
		return &repo, ReconcileCreated, nil
	case 1:
		return &matches[0], ReconcileFound, nil
	default:
		return nil, ReconcileFound, ErrAmbiguousRecord
	}
}

// FindRepositoryForUserByName looks a repository up by name within one
// user's scope. Duplicate names are ErrAmbiguousRecord, absence is
// ErrNotFound.
func FindRepositoryForUserByName(db *gorm.DB, userID uint, name string) (*Repository, error) {
	var matches []Repository
	if err := db.Where("user_id = ? AND name = ?", userID, name).Find(&matches).Error; err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrAmbiguousRecord
	}
}

func ListRepositoriesForUser(userID uint) (repos []Repository, err error) {
	err = DB.Preload("Provider").Where("user_id = ?", userID).Order("name").Find(&repos).Error
	return repos, err
}
