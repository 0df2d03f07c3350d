package friendship

import (
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/user"
	"gorm.io/gorm"
)

// Status 是好友关系所处的阶段
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Friendship 是一条有方向的好友请求，其状态代表双方关系的当前阶段。
// PairLow/PairHigh 是规范化后的无序用户对，唯一索引保证同一对用户之间最多只有一行，与方向无关。
type Friendship struct {
	ID         uint      `gorm:"primarykey"`
	FromUserID uint      `gorm:"not null;index"`
	FromUser   user.User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	ToUserID   uint      `gorm:"not null;index"`
	ToUser     user.User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
	PairLow    uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:1"`
	PairHigh   uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:2"`
	Status     Status    `gorm:"type:varchar(10);not null;default:pending;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BeforeCreate 根据双方ID填充规范化的用户对
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	f.PairLow, f.PairHigh = normalizePair(f.FromUserID, f.ToUserID)
	return nil
}

func normalizePair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Counterpart 返回关系中另一方的ID
func (f Friendship) Counterpart(userID uint) uint {
	if f.FromUserID == userID {
		return f.ToUserID
	}
	return f.FromUserID
}

// View 是好友关系对外的JSON表示
type View struct {
	ID           uint      `json:"id"`
	FromUserID   uint      `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	ToUserID     uint      `json:"to_user_id"`
	ToUsername   string    `json:"to_username"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// View 需要预加载 FromUser 与 ToUser
func (f Friendship) View() View {
	return View{
		ID:           f.ID,
		FromUserID:   f.FromUserID,
		FromUsername: f.FromUser.Username,
		ToUserID:     f.ToUserID,
		ToUsername:   f.ToUser.Username,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Candidate 是搜索好友时返回的一条候选用户
type Candidate struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar"`
}

// Profile 是好友资料页，只有本人或已接受的好友可以查看
type Profile struct {
	ID                uint                 `json:"id"`
	Username          string               `json:"username"`
	AvatarURL         *string              `json:"avatar"`
	Bio               string               `json:"bio"`
	DateJoined        time.Time            `json:"date_joined"`
	GamesPlayed       int64                `json:"games_played"`
	AvgReactionTime   *float64             `json:"avg_reaction_time"`
	Achievements      []ProfileAchievement `json:"achievements"`
	AchievementPoints int64                `json:"achievement_points"`
	HighScores        map[string]int       `json:"high_scores"`
}

// ProfileAchievement 是资料页中展示的一个已解锁成就
type ProfileAchievement struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// RequestInput 是发起好友请求的请求体，friend_identifier 可以是用户名或邮箱
type RequestInput struct {
	FriendIdentifier string `json:"friend_identifier" binding:"required"`
}
