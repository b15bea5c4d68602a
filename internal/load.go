package internal

import (
	"github.com/girbons/tuttle/pkg/common"
	"github.com/girbons/tuttle/pkg/model"
	"k8s.io/klog/v2"
)

func seedProviders() error {
	provider := model.Provider{Name: "github"}
	return model.DB.Where("name = ?", provider.Name).FirstOrCreate(&provider).Error
}

// loadUser creates a bootstrap user and github token from the
// environment on an empty database, so a fresh install can run its
// first sync without going through the API.
func loadUser() error {
	if common.BootstrapUsername == "" || common.BootstrapToken == "" {
		return nil
	}
	uc, err := model.CountUsers()
	if err != nil || uc > 0 {
		return err
	}

	klog.Infof("Creating bootstrap user %s from environment variables", common.BootstrapUsername)
	user := model.User{Username: common.BootstrapUsername}
	if err := model.AddUser(&user); err != nil {
		return err
	}

	provider, err := model.GetProviderByName("github")
	if err != nil {
		return err
	}
	token := model.Token{
		Title:      "bootstrap",
		Value:      common.BootstrapToken,
		UserID:     user.ID,
		ProviderID: provider.ID,
	}
	return model.DB.Create(&token).Error
}

// Bootstrap seeds the database after migration.
func Bootstrap() {
	if err := seedProviders(); err != nil {
		klog.Warningf("Failed to seed providers: %v", err)
	}

	if err := loadUser(); err != nil {
		klog.Warningf("Failed to migrate env to db user: %v", err)
	}
}
