package model

import "gorm.io/gorm"

// DeployKey is a disposable cache of a public key registered on a
// remote repository. Rows are wiped per user before every sync run and
// recreated from the provider's current state, never edited by hand.
type DeployKey struct {
	Model
	Title        string `json:"title" gorm:"type:varchar(100)"`
	Key          string `json:"key" gorm:"type:text;not null"`
	RepositoryID uint   `json:"repository_id" gorm:"not null;index"`

	// Relationship
	Repository Repository `json:"repository,omitempty" gorm:"foreignKey:RepositoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (DeployKey) TableName() string {
	return "deploy_keys"
}

// DeleteDeployKeysForUser removes every deploy key whose repository
// belongs to the user. Runs once per sync, before keys are recreated.
func DeleteDeployKeysForUser(db *gorm.DB, userID uint) error {
	subquery := db.Model(&Repository{}).Select("id").Where("user_id = ?", userID)
	return db.Where("repository_id IN (?)", subquery).Delete(&DeployKey{}).Error
}

// ListDeployKeysForUser joins through repositories so the display
// surface can show a user's keys without touching sync state.
func ListDeployKeysForUser(userID uint) (keys []DeployKey, err error) {
	err = DB.Preload("Repository").
		Joins("JOIN repositories ON repositories.id = deploy_keys.repository_id").
		Where("repositories.user_id = ?", userID).
		Order("deploy_keys.id").
		Find(&keys).Error
	return keys, err
}
