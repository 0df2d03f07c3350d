package session

import (
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/game"
	"gorm.io/gorm"
)

// GameSession 是一局反应游戏的记录，无论是否完成都会保存
type GameSession struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	UserID      uint            `gorm:"not null;index:idx_session_user_created,priority:1" json:"user_id"`
	Score       int             `gorm:"not null;default:0" json:"score"`
	Difficulty  game.Difficulty `gorm:"type:varchar(10);not null" json:"difficulty"`
	TimePlayed  int             `gorm:"not null;default:0" json:"time_played"`
	IsCompleted bool            `gorm:"not null;default:false" json:"is_completed"`

	// ReactionTimes 是每次反应的耗时（毫秒），AvgReactionTime 由它派生
	ReactionTimes   []int    `gorm:"type:text;serializer:json" json:"reaction_times"`
	AvgReactionTime *float64 `json:"avg_reaction_time"`

	// GameState 是客户端的存档数据，服务端不解析
	GameState map[string]any `gorm:"type:text;serializer:json" json:"game_state"`

	CreatedAt time.Time `gorm:"index:idx_session_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave 在每次创建或保存前重新计算平均反应时间
func (s *GameSession) BeforeSave(tx *gorm.DB) error {
	s.AvgReactionTime = meanOf(s.ReactionTimes)
	return nil
}

func meanOf(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	avg := float64(sum) / float64(len(values))
	return &avg
}

// CreateInput 是提交一局对局时的请求体
type CreateInput struct {
	Score         int             `json:"score" binding:"min=0"`
	Difficulty    game.Difficulty `json:"difficulty" binding:"required,difficulty"`
	TimePlayed    int             `json:"time_played" binding:"min=0"`
	IsCompleted   bool            `json:"is_completed"`
	ReactionTimes []int           `json:"reaction_times" binding:"omitempty,dive,gt=0"`
	GameState     map[string]any  `json:"game_state"`
}

// UpdateInput 只允许修改反应时间和存档，分数与难度在创建后不可变
type UpdateInput struct {
	ReactionTimes *[]int         `json:"reaction_times"`
	GameState     map[string]any `json:"game_state"`
}

// Result 是创建对局的结果，附带本次新解锁的成就
type Result struct {
	GameSession
	NewAchievements []achievement.Achievement `json:"new_achievements"`
}

// ListQuery 描述对局列表的过滤与排序
type ListQuery struct {
	Difficulty game.Difficulty
	Completed  *bool
	Ordering   string
}

// Stats 是个人资料页展示的对局统计
type Stats struct {
	GamesPlayed     int64                   `json:"games_played"`
	AvgReactionTime *float64                `json:"avg_reaction_time"`
	HighScores      map[game.Difficulty]int `json:"high_scores"`
}
