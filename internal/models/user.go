package models

// User is the read-only slice of the site's user directory the forum needs
type User struct {
	ID       string  `gorm:"type:varchar(64);primaryKey;column:id"`
	Username string  `gorm:"type:varchar(64);not null;column:username"`
	Image    *string `gorm:"type:varchar(1024);column:image"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
