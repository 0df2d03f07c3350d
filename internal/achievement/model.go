package achievement

import (
	"time"
)

// Type 是成就在目录中的展示分类，与解锁条件的种类相互独立
type Type string

const (
	TypeScore       Type = "score"
	TypeReaction    Type = "reaction"
	TypeGamesPlayed Type = "games_played"
	TypeStreak      Type = "streak"
	TypeSpecial     Type = "special"
)

func (t Type) Valid() bool {
	switch t {
	case TypeScore, TypeReaction, TypeGamesPlayed, TypeStreak, TypeSpecial:
		return true
	}
	return false
}

// Achievement 是运营维护的静态成就目录中的一项
type Achievement struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	Name        string      `gorm:"uniqueIndex;not null;type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Type        Type        `gorm:"column:achievement_type;type:varchar(20);not null;default:special" json:"achievement_type"`
	Requirement Requirement `gorm:"type:text;not null" json:"requirement"`
	Points      int         `gorm:"not null;default:0" json:"points"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UserAchievement 记录用户解锁某个成就的时间。(user_id, achievement_id) 唯一。
type UserAchievement struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	UserID        uint        `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"-"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement,priority:2" json:"-"`
	Achievement   Achievement `gorm:"constraint:OnDelete:CASCADE" json:"achievement"`
	UnlockedAt    time.Time   `gorm:"not null" json:"unlocked_at"`
}
