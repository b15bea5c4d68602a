package model

// User identity is managed by the surrounding application; tuttle only
// needs a stable owner for tokens and synchronized repositories.
type User struct {
	Model
	Username string `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email    string `json:"email,omitempty" gorm:"type:varchar(255)"`
}

func (User) TableName() string {
	return "users"
}

func AddUser(user *User) error {
	return DB.Create(user).Error
}

func CountUsers() (count int64, err error) {
	return count, DB.Model(&User{}).Count(&count).Error
}

func GetUserByUsername(username string) (*User, error) {
	var user User
	if err := DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
