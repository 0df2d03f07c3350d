package session

import (
	"errors"
	"fmt"

	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/game"
	"github.com/SlpAus/reaction-game-backend/internal/leaderboard"
	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// orderings 是列表接口允许的排序字段，键为查询参数取值
var orderings = map[string]string{
	"-created_at":  "created_at desc",
	"created_at":   "created_at asc",
	"-score":       "score desc",
	"score":        "score asc",
	"-time_played": "time_played desc",
	"time_played":  "time_played asc",
}

func validateReactionTimes(times []int) error {
	for i, v := range times {
		if v <= 0 {
			return apperr.Validation("第%d个反应时间必须为正数", i+1)
		}
	}
	return nil
}

func validateCreate(in CreateInput) error {
	if in.Score < 0 {
		return apperr.Validation("分数不能为负数")
	}
	if in.TimePlayed < 0 {
		return apperr.Validation("游戏时长不能为负数")
	}
	if !in.Difficulty.Valid() {
		return apperr.Validation("无效的难度: %q", in.Difficulty)
	}
	return validateReactionTimes(in.ReactionTimes)
}

// Create 保存一局对局。已完成的对局会在同一事务内更新排行榜并评估成就，
// 任一步失败都会整体回滚；未完成的对局只保存记录。
func Create(db *gorm.DB, userID uint, in CreateInput) (*Result, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	s := GameSession{
		UserID:        userID,
		Score:         in.Score,
		Difficulty:    in.Difficulty,
		TimePlayed:    in.TimePlayed,
		IsCompleted:   in.IsCompleted,
		ReactionTimes: in.ReactionTimes,
		GameState:     in.GameState,
	}
	if s.ReactionTimes == nil {
		s.ReactionTimes = []int{}
	}
	if s.GameState == nil {
		s.GameState = map[string]any{}
	}

	result := &Result{NewAchievements: []achievement.Achievement{}}
	boardChanged := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("保存对局失败: %w", err)
		}
		if !s.IsCompleted {
			return nil
		}

		changed, err := leaderboard.Record(tx, leaderboard.RecordInput{
			UserID:          userID,
			Difficulty:      s.Difficulty,
			Score:           s.Score,
			AvgReactionTime: s.AvgReactionTime,
			AchievedAt:      s.CreatedAt,
		})
		if err != nil {
			return err
		}
		boardChanged = changed

		unlocked, err := achievement.Evaluate(tx, achievement.Facts{
			UserID:          userID,
			Score:           s.Score,
			AvgReactionTime: s.AvgReactionTime,
			CompletedGames:  func() (int64, error) { return CountCompleted(tx, userID) },
		})
		if err != nil {
			return err
		}
		result.NewAchievements = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if boardChanged {
		leaderboard.InvalidateCache(db.Statement.Context)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":          userID,
		"session_id":       s.ID,
		"difficulty":       s.Difficulty,
		"score":            s.Score,
		"completed":        s.IsCompleted,
		"new_achievements": len(result.NewAchievements),
	}).Info("对局已记录")

	result.GameSession = s
	return result, nil
}

// Update 修改对局的反应时间或存档，平均反应时间随之重新计算。
// 不会重新触发排行榜或成就。
func Update(db *gorm.DB, userID, id uint, in UpdateInput) (*GameSession, error) {
	if in.ReactionTimes == nil && in.GameState == nil {
		return nil, apperr.Validation("没有可更新的字段")
	}
	if in.ReactionTimes != nil {
		if err := validateReactionTimes(*in.ReactionTimes); err != nil {
			return nil, err
		}
	}

	var s GameSession
	err := db.Transaction(func(tx *gorm.DB) error {
		found, err := Get(tx, userID, id)
		if err != nil {
			return err
		}
		s = *found

		if in.ReactionTimes != nil {
			s.ReactionTimes = append([]int{}, (*in.ReactionTimes)...)
		}
		if in.GameState != nil {
			s.GameState = in.GameState
		}
		if err := tx.Save(&s).Error; err != nil {
			return fmt.Errorf("更新对局失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get 返回属于该用户的对局，他人的对局同样视为不存在
func Get(db *gorm.DB, userID, id uint) (*GameSession, error) {
	var s GameSession
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("对局 %d 不存在", id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询对局失败: %w", err)
	}
	return &s, nil
}

// Latest 返回用户最近的一局
func Latest(db *gorm.DB, userID uint) (*GameSession, error) {
	var sessions []GameSession
	err := db.Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Limit(1).Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("查询最近对局失败: %w", err)
	}
	if len(sessions) == 0 {
		return nil, apperr.NotFound("还没有任何对局")
	}
	return &sessions[0], nil
}

// List 返回用户自己的对局，默认最新的在前
func List(db *gorm.DB, userID uint, q ListQuery) ([]GameSession, error) {
	ordering := q.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	order, ok := orderings[ordering]
	if !ok {
		return nil, apperr.Validation("不支持的排序字段: %q", q.Ordering)
	}

	tx := db.Where("user_id = ?", userID)
	if q.Difficulty != "" {
		if !q.Difficulty.Valid() {
			return nil, apperr.Validation("无效的难度: %q", q.Difficulty)
		}
		tx = tx.Where("difficulty = ?", q.Difficulty)
	}
	if q.Completed != nil {
		tx = tx.Where("is_completed = ?", *q.Completed)
	}

	sessions := []GameSession{}
	if err := tx.Order(order).Order("id desc").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("查询对局列表失败: %w", err)
	}
	return sessions, nil
}

// CountCompleted 统计用户已完成的对局数
func CountCompleted(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&GameSession{}).Where("user_id = ? AND is_completed = ?", userID, true).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("统计已完成对局失败: %w", err)
	}
	return n, nil
}

// StatsFor 汇总用户已完成对局的统计：局数、各局平均反应时间的均值、各难度最高分
func StatsFor(db *gorm.DB, userID uint) (*Stats, error) {
	stats := &Stats{HighScores: map[game.Difficulty]int{}}

	played, err := CountCompleted(db, userID)
	if err != nil {
		return nil, err
	}
	stats.GamesPlayed = played

	var avg struct {
		Value *float64
	}
	err = db.Model(&GameSession{}).
		Select("AVG(avg_reaction_time) AS value").
		Where("user_id = ? AND is_completed = ? AND avg_reaction_time IS NOT NULL", userID, true).
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("统计平均反应时间失败: %w", err)
	}
	stats.AvgReactionTime = avg.Value

	var best []struct {
		Difficulty game.Difficulty
		Best       int
	}
	err = db.Model(&GameSession{}).
		Select("difficulty, MAX(score) AS best").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Group("difficulty").
		Scan(&best).Error
	if err != nil {
		return nil, fmt.Errorf("统计各难度最高分失败: %w", err)
	}
	for _, b := range best {
		stats.HighScores[b.Difficulty] = b.Best
	}
	return stats, nil
}
