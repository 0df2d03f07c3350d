package leaderboard

import (
	"fmt"

	"github.com/SlpAus/reaction-game-backend/internal/game"
	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record 将一局已完成对局的成绩写入排行榜，只保留个人最佳。
//
// 整个“查找或创建、更高才覆盖”的流程由一条条件upsert完成：
// 冲突时只有新分数严格更高才会覆盖 score、avg_reaction_time 和 date_achieved。
// 因此并发提交无论提交顺序如何，最终都是各分数中的最大值。
// 返回值表示本次是否新建或刷新了记录。
func Record(db *gorm.DB, in RecordInput) (bool, error) {
	if !in.Difficulty.Valid() {
		return false, apperr.Validation("无效的难度: %q", in.Difficulty)
	}
	if in.Score < 0 {
		return false, apperr.Validation("分数不能为负数")
	}

	entry := Entry{
		UserID:          in.UserID,
		Difficulty:      in.Difficulty,
		Score:           in.Score,
		AvgReactionTime: in.AvgReactionTime,
		DateAchieved:    in.AchievedAt,
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "difficulty"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "avg_reaction_time", "date_achieved", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "excluded.score > leaderboard_entries.score"},
		}},
	}).Create(&entry)
	if result.Error != nil {
		return false, fmt.Errorf("写入排行榜失败: %w", result.Error)
	}

	changed := result.RowsAffected > 0
	logrus.WithFields(logrus.Fields{
		"user_id":    in.UserID,
		"difficulty": in.Difficulty,
		"score":      in.Score,
		"changed":    changed,
	}).Debug("排行榜记录已处理")
	return changed, nil
}

// Get 返回用户在某难度下的记录，不存在时返回 (nil, nil)
func Get(db *gorm.DB, userID uint, difficulty game.Difficulty) (*Entry, error) {
	var entries []Entry
	err := db.Where("user_id = ? AND difficulty = ?", userID, difficulty).Limit(1).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询排行榜记录失败: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// rankExpr 计算同难度内严格更高的不同分数个数，得到从1开始的密集排名
const rankExpr = "(SELECT COUNT(DISTINCT s.score) FROM leaderboard_entries s " +
	"WHERE s.difficulty = e.difficulty AND s.score > e.score) + 1 AS board_rank"

// List 按分数降序返回排行榜，排名在读取时计算，因此总是与当前数据一致
func List(db *gorm.DB, q Query) ([]RankedEntry, error) {
	limit := normalizeLimit(q.Limit, DefaultListLimit)

	tx := db.Table("leaderboard_entries AS e").
		Select("e.id, e.user_id, users.username, e.difficulty, e.score, e.avg_reaction_time, e.date_achieved, " + rankExpr).
		Joins("JOIN users ON users.id = e.user_id")
	if q.Difficulty != "" {
		tx = tx.Where("e.difficulty = ?", q.Difficulty)
	}
	if q.Search != "" {
		tx = tx.Where("users.username LIKE ?"+database.LikeEscapeClause, database.ContainsPattern(q.Search))
	}

	entries := []RankedEntry{}
	err := tx.Order("e.score DESC").Order("e.date_achieved ASC").Order("e.id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("读取排行榜失败: %w", err)
	}
	return entries, nil
}

// Top 返回前N名，默认10条
func Top(db *gorm.DB, difficulty game.Difficulty, limit int) ([]RankedEntry, error) {
	return List(db, Query{Difficulty: difficulty, Limit: normalizeLimit(limit, DefaultTopLimit)})
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, MaxLimit)
}
