package achievement

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Facts 是一次已完成对局提供给评估器的事实。
// CompletedGames 只有在目录里存在未解锁的 games_played 成就时才会被调用，且最多调用一次。
type Facts struct {
	UserID          uint
	Score           int
	AvgReactionTime *float64
	CompletedGames  func() (int64, error)
}

// lazyCount 缓存 CompletedGames 的结果
type lazyCount struct {
	fetch  func() (int64, error)
	value  int64
	loaded bool
}

func (l *lazyCount) get() (int64, error) {
	if l.loaded {
		return l.value, nil
	}
	if l.fetch == nil {
		return 0, fmt.Errorf("缺少已完成对局计数")
	}
	v, err := l.fetch()
	if err != nil {
		return 0, err
	}
	l.value, l.loaded = v, true
	return v, nil
}

// matches 判断条件是否满足，返回的 reason 用于日志
func matches(req Requirement, f Facts, games *lazyCount) (bool, string, error) {
	switch req.Kind {
	case KindHighScore:
		return f.Score >= req.MinScore, fmt.Sprintf("score=%d min_score=%d", f.Score, req.MinScore), nil

	case KindFastReaction:
		if f.AvgReactionTime == nil {
			return false, "no reaction times", nil
		}
		avg := *f.AvgReactionTime
		return avg <= req.MaxReactionTimeMs, fmt.Sprintf("avg=%.2f max=%g", avg, req.MaxReactionTimeMs), nil

	case KindGamesPlayed:
		n, err := games.get()
		if err != nil {
			return false, "", err
		}
		return n >= req.MinGames, fmt.Sprintf("games=%d min_games=%d", n, req.MinGames), nil
	}
	return false, "unknown requirement", nil
}

// Evaluate 对用户尚未解锁的成就逐一求值，返回本次新解锁的成就。
//
// 预先查询已解锁集合只是优化；真正的去重由 (user_id, achievement_id) 唯一索引保证。
// 并发评估时插入冲突意味着另一方已经解锁，视为成功，不计入本次返回。
func Evaluate(db *gorm.DB, f Facts) ([]Achievement, error) {
	catalog, err := LoadCatalog(db)
	if err != nil {
		return nil, err
	}

	var unlockedIDs []uint
	if err := db.Model(&UserAchievement{}).Where("user_id = ?", f.UserID).Pluck("achievement_id", &unlockedIDs).Error; err != nil {
		return nil, fmt.Errorf("读取已解锁成就失败: %w", err)
	}
	unlocked := make(map[uint]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = true
	}

	games := &lazyCount{fetch: f.CompletedGames}
	newlyUnlocked := []Achievement{}

	for _, a := range catalog {
		log := logrus.WithFields(logrus.Fields{
			"user_id":        f.UserID,
			"achievement_id": a.ID,
		})

		if unlocked[a.ID] {
			log.WithFields(logrus.Fields{"decision": "skip", "reason": "already unlocked"}).Debug("成就评估")
			continue
		}

		ok, reason, err := matches(a.Requirement, f, games)
		if err != nil {
			return nil, fmt.Errorf("评估成就 %d 失败: %w", a.ID, err)
		}
		if !ok {
			log.WithFields(logrus.Fields{"decision": "not_met", "reason": reason}).Debug("成就评估")
			continue
		}

		ua := UserAchievement{UserID: f.UserID, AchievementID: a.ID, UnlockedAt: time.Now()}
		result := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
		if result.Error != nil {
			return nil, fmt.Errorf("写入成就解锁记录失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			log.WithFields(logrus.Fields{"decision": "already_unlocked_concurrently", "reason": reason}).Info("成就评估")
			continue
		}

		log.WithFields(logrus.Fields{"decision": "unlocked", "reason": reason}).Info("成就评估")
		newlyUnlocked = append(newlyUnlocked, a)
	}
	return newlyUnlocked, nil
}

// ListUnlocked 返回用户已解锁的成就，最近解锁的在前
func ListUnlocked(db *gorm.DB, userID uint) ([]UserAchievement, error) {
	items := []UserAchievement{}
	err := db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("读取用户成就失败: %w", err)
	}
	return items, nil
}

// TotalPoints 汇总用户已解锁成就的点数
func TotalPoints(db *gorm.DB, userID uint) (int64, error) {
	var total int64
	err := db.Table("user_achievements").
		Select("COALESCE(SUM(achievements.points), 0)").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("统计成就点数失败: %w", err)
	}
	return total, nil
}
