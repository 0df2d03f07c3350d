package user

import (
	"time"
)

// User 是外部账号系统拥有的用户记录。本服务只读取它，不负责注册或修改。
type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Username string `gorm:"uniqueIndex;not null;type:varchar(150)" json:"username"`
	Email    string `gorm:"uniqueIndex;not null;type:varchar(254)" json:"email"`

	// AvatarURL 与 Bio 来自外部资料服务，可能为空
	AvatarURL *string `gorm:"type:varchar(512)" json:"avatar"`
	Bio       string  `gorm:"type:text" json:"bio"`

	CreatedAt time.Time `json:"date_joined"`
}

// Summary 是对外展示的最小用户资料
type Summary struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar"`
	Bio       string  `json:"bio"`
}

// Summary 返回用户的最小资料视图
func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
	}
}
