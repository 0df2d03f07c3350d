package friendship

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/session"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// minSearchRunes 以下长度的搜索词直接返回空结果
	minSearchRunes = 2
	// SearchLimit 是单次搜索返回的最多候选数
	SearchLimit = 20
)

func withUsers(db *gorm.DB) *gorm.DB {
	return db.Preload("FromUser").Preload("ToUser")
}

func load(db *gorm.DB, id uint) (*Friendship, error) {
	var f Friendship
	err := withUsers(db).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("好友关系 %d 不存在", id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询好友关系失败: %w", err)
	}
	return &f, nil
}

// loadForActor 读取关系，调用者不是任何一方时同样视为不存在
func loadForActor(db *gorm.DB, id, actor uint) (*Friendship, error) {
	f, err := load(db, id)
	if err != nil {
		return nil, err
	}
	if f.FromUserID != actor && f.ToUserID != actor {
		return nil, apperr.NotFound("好友关系 %d 不存在", id)
	}
	return f, nil
}

// Request 由 fromUserID 向 identifier（先按用户名，再按邮箱）对应的用户发起好友请求。
// 同一对用户之间已经存在任何状态的关系时返回 Conflict，这由唯一索引在存储层保证。
func Request(db *gorm.DB, fromUserID uint, identifier string) (*Friendship, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperr.Validation("必须提供用户名或邮箱")
	}

	target, err := user.FindByIdentifier(db, identifier)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.NotFound("用户 %q 不存在", identifier)
	}
	if target.ID == fromUserID {
		return nil, apperr.Validation("不能添加自己为好友")
	}

	f := Friendship{FromUserID: fromUserID, ToUserID: target.ID, Status: StatusPending}
	result := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_low"}, {Name: "pair_high"}},
			DoNothing: true,
		}).
		Create(&f)
	if result.Error != nil {
		return nil, fmt.Errorf("创建好友请求失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Conflict("与该用户的好友关系已存在")
	}

	logrus.WithFields(logrus.Fields{
		"friendship_id": f.ID,
		"from_user_id":  fromUserID,
		"to_user_id":    target.ID,
	}).Info("好友请求已创建")
	return load(db, f.ID)
}

// respondTo 处理接收方对待处理请求的接受或拒绝。
// 状态检查之后用带 status 条件的更新落库，并发时只有一方能成功。
func respondTo(db *gorm.DB, id, actor uint, next Status) (*Friendship, error) {
	f, err := loadForActor(db, id, actor)
	if err != nil {
		return nil, err
	}
	if f.ToUserID != actor {
		return nil, apperr.Forbidden("只有请求的接收方可以处理该请求")
	}
	if f.Status != StatusPending {
		return nil, apperr.Conflict("好友请求已处理，当前状态为 %s", f.Status)
	}

	result := db.Model(&Friendship{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{"status": next, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, fmt.Errorf("更新好友关系失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Conflict("好友请求已被处理")
	}

	logrus.WithFields(logrus.Fields{
		"friendship_id": id,
		"actor":         actor,
		"status":        next,
	}).Info("好友请求已处理")
	return load(db, id)
}

// Accept 接受好友请求
func Accept(db *gorm.DB, id, actor uint) (*Friendship, error) {
	return respondTo(db, id, actor, StatusAccepted)
}

// Reject 拒绝好友请求。被拒绝的关系保留在库中，双方都不能再次发起请求。
func Reject(db *gorm.DB, id, actor uint) (*Friendship, error) {
	return respondTo(db, id, actor, StatusRejected)
}

// Cancel 由发起方撤回仍处于待处理状态的请求，记录被删除
func Cancel(db *gorm.DB, id, actor uint) error {
	f, err := loadForActor(db, id, actor)
	if err != nil {
		return err
	}
	if f.FromUserID != actor {
		return apperr.Forbidden("只有请求的发起方可以撤回请求")
	}
	if f.Status != StatusPending {
		return apperr.Conflict("只能撤回待处理的请求，当前状态为 %s", f.Status)
	}

	result := db.Where("id = ? AND status = ?", id, StatusPending).Delete(&Friendship{})
	if result.Error != nil {
		return fmt.Errorf("撤回好友请求失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("好友请求已被处理")
	}

	logrus.WithFields(logrus.Fields{"friendship_id": id, "actor": actor}).Info("好友请求已撤回")
	return nil
}

// List 返回与用户相关的全部关系，最新的在前，可按状态过滤
func List(db *gorm.DB, userID uint, status Status) ([]Friendship, error) {
	q := withUsers(db).Where("from_user_id = ? OR to_user_id = ?", userID, userID)
	if status != "" {
		if !status.Valid() {
			return nil, apperr.Validation("无效的状态: %q", status)
		}
		q = q.Where("status = ?", status)
	}

	var items []Friendship
	if err := q.Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询好友关系失败: %w", err)
	}
	return items, nil
}

// friendIDs 返回与用户处于已接受关系的所有对方ID
func friendIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var rows []Friendship
	err := db.Select("from_user_id", "to_user_id").
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, StatusAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询好友失败: %w", err)
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Counterpart(userID))
	}
	return ids, nil
}

// ListFriends 返回已接受关系中对方的最小资料，按用户名排序
func ListFriends(db *gorm.DB, userID uint) ([]user.Summary, error) {
	ids, err := friendIDs(db, userID)
	if err != nil {
		return nil, err
	}
	summaries := []user.Summary{}
	if len(ids) == 0 {
		return summaries, nil
	}

	var users []user.User
	if err := db.Where("id IN ?", ids).Order("username asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询好友资料失败: %w", err)
	}
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// Search 按用户名或邮箱子串查找可以添加的用户。
// 排除自己、已接受的好友以及自己已发出且仍待处理的请求对象。
func Search(db *gorm.DB, userID uint, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	candidates := []Candidate{}
	if utf8.RuneCountInString(query) < minSearchRunes {
		return candidates, nil
	}

	exclude, err := friendIDs(db, userID)
	if err != nil {
		return nil, err
	}
	var pending []uint
	err = db.Model(&Friendship{}).
		Where("from_user_id = ? AND status = ?", userID, StatusPending).
		Pluck("to_user_id", &pending).Error
	if err != nil {
		return nil, fmt.Errorf("查询待处理请求失败: %w", err)
	}
	exclude = append(exclude, pending...)
	exclude = append(exclude, userID)

	users, err := user.Search(db, query, user.SearchOptions{ExcludeIDs: exclude, Limit: SearchLimit})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		candidates = append(candidates, Candidate{ID: u.ID, Username: u.Username, Email: u.Email, AvatarURL: u.AvatarURL})
	}
	return candidates, nil
}

// AreFriends 判断两个用户之间是否存在已接受的关系
func AreFriends(db *gorm.DB, a, b uint) (bool, error) {
	low, high := normalizePair(a, b)
	var n int64
	err := db.Model(&Friendship{}).
		Where("pair_low = ? AND pair_high = ? AND status = ?", low, high, StatusAccepted).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("查询好友关系失败: %w", err)
	}
	return n > 0, nil
}

// GetProfile 返回目标用户的资料与游戏统计，只有本人或已接受的好友可以查看
func GetProfile(db *gorm.DB, viewer, target uint) (*Profile, error) {
	u, err := user.FindByID(db, target)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("用户 %d 不存在", target)
	}

	if viewer != target {
		ok, err := AreFriends(db, viewer, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Forbidden("只能查看好友的资料")
		}
	}

	stats, err := session.StatsFor(db, target)
	if err != nil {
		return nil, err
	}
	unlocked, err := achievement.ListUnlocked(db, target)
	if err != nil {
		return nil, err
	}
	points, err := achievement.TotalPoints(db, target)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:                u.ID,
		Username:          u.Username,
		AvatarURL:         u.AvatarURL,
		Bio:               u.Bio,
		DateJoined:        u.CreatedAt,
		GamesPlayed:       stats.GamesPlayed,
		AvgReactionTime:   stats.AvgReactionTime,
		Achievements:      make([]ProfileAchievement, 0, len(unlocked)),
		AchievementPoints: points,
		HighScores:        make(map[string]int, len(stats.HighScores)),
	}
	for _, ua := range unlocked {
		p.Achievements = append(p.Achievements, ProfileAchievement{
			ID:          ua.Achievement.ID,
			Name:        ua.Achievement.Name,
			Description: ua.Achievement.Description,
			Points:      ua.Achievement.Points,
			UnlockedAt:  ua.UnlockedAt,
		})
	}
	for d, score := range stats.HighScores {
		p.HighScores[string(d)] = score
	}
	return p, nil
}
