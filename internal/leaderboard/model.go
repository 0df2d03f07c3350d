package leaderboard

import (
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/game"
)

// Entry 保存一个用户在某个难度下的个人最佳成绩。
// (user_id, difficulty) 唯一，排名不落库，读取时按分数实时计算。
type Entry struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex:idx_leaderboard_user_difficulty,priority:1" json:"user_id"`
	Difficulty      game.Difficulty `gorm:"type:varchar(10);not null;uniqueIndex:idx_leaderboard_user_difficulty,priority:2;index:idx_leaderboard_difficulty_score,priority:1" json:"difficulty"`
	Score           int             `gorm:"not null;index:idx_leaderboard_difficulty_score,priority:2" json:"score"`
	AvgReactionTime *float64        `json:"avg_reaction_time"`
	DateAchieved    time.Time       `gorm:"not null" json:"date_achieved"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"-"`
}

func (Entry) TableName() string {
	return "leaderboard_entries"
}

// RankedEntry 是排行榜接口返回的一行，附带用户名和实时计算的密集排名
type RankedEntry struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"user_id"`
	Username        string          `json:"username"`
	Difficulty      game.Difficulty `json:"difficulty"`
	Score           int             `json:"score"`
	Rank            int             `gorm:"column:board_rank" json:"rank"`
	AvgReactionTime *float64        `json:"avg_reaction_time"`
	DateAchieved    time.Time       `json:"date_achieved"`
}

// RecordInput 是一次已完成对局提交给排行榜的数据
type RecordInput struct {
	UserID          uint
	Difficulty      game.Difficulty
	Score           int
	AvgReactionTime *float64
	AchievedAt      time.Time
}

// Query 描述一次排行榜读取
type Query struct {
	Difficulty game.Difficulty
	Limit      int
	Search     string
}

const (
	DefaultListLimit = 100
	DefaultTopLimit  = 10
	MaxLimit         = 500
)
