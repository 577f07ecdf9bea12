package model

import "time"

// User 用户账号
// Password 只存 bcrypt 哈希，注册后账号不会被删除
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (*User) TableName() string {
	return "users"
}
