package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Firstname string    `gorm:"size:300;not null" json:"firstname"`
	Surname   string    `gorm:"size:300;not null" json:"surname"`
	Email     string    `gorm:"size:300;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:300;not null" json:"-"`
	Role      string    `gorm:"size:10;not null;default:user" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
