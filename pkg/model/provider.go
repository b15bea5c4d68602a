package model

// Provider identifies a remote source-hosting service, e.g. "github".
// Rows are immutable after creation and referenced by Token and
// Repository.
type Provider struct {
	Model
	Name string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}

func (Provider) TableName() string {
	return "providers"
}

func GetProviderByName(name string) (*Provider, error) {
	var provider Provider
	if err := DB.Where("name = ?", name).First(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func ListProviders() (providers []Provider, err error) {
	err = DB.Order("id").Find(&providers).Error
	return providers, err
}
