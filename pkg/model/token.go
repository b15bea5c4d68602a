package model

import "gorm.io/gorm"

// Token is a user's personal access token for one provider. A user
// keeps at most one token per provider, enforced by the unique index.
type Token struct {
	Model
	Title      string `json:"title" gorm:"type:varchar(100)"`
	Value      string `json:"-" gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID     uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_token_user_provider"`
	ProviderID uint   `json:"provider_id" gorm:"not null;uniqueIndex:idx_token_user_provider"`

	// Relationships
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Provider Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Token) TableName() string {
	return "tokens"
}

// FindTokenByValue resolves a token by its secret value.
func FindTokenByValue(db *gorm.DB, value string) (*Token, error) {
	var token Token
	if err := db.Where("value = ?", value).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// FindTokenForUser resolves a user's token for the named provider, or
// the user's only token when providerName is empty.
func FindTokenForUser(db *gorm.DB, userID uint, providerName string) (*Token, error) {
	query := db.Model(&Token{}).
		Joins("JOIN providers ON providers.id = tokens.provider_id").
		Where("tokens.user_id = ?", userID)
	if providerName != "" {
		query = query.Where("providers.name = ?", providerName)
	}
	var token Token
	if err := query.First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func ListTokensForUser(userID uint) (tokens []Token, err error) {
	err = DB.Preload("Provider").Where("user_id = ?", userID).Order("id").Find(&tokens).Error
	return tokens, err
}
