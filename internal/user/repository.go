package user

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"gorm.io/gorm"
)

// FindByID 按主键查找用户，不存在时返回 (nil, nil)
func FindByID(db *gorm.DB, id uint) (*User, error) {
	return findOne(db, "id = ?", id)
}

// FindByUsername 按用户名精确查找
func FindByUsername(db *gorm.DB, username string) (*User, error) {
	return findOne(db, "username = ?", username)
}

// FindByEmail 按邮箱精确查找
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	return findOne(db, "email = ?", email)
}

// FindByIdentifier 依次按用户名、邮箱查找，两次查询都走唯一索引
func FindByIdentifier(db *gorm.DB, identifier string) (*User, error) {
	u, err := FindByUsername(db, identifier)
	if err != nil || u != nil {
		return u, err
	}
	return FindByEmail(db, identifier)
}

func findOne(db *gorm.DB, query string, arg any) (*User, error) {
	var u User
	err := db.Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &u, nil
}

// SearchOptions 控制 Search 的排除条件与数量上限
type SearchOptions struct {
	ExcludeIDs []uint
	Limit      int
}

// Search 分别按用户名和邮箱做子串匹配，再在内存中合并去重，结果按用户名排序
func Search(db *gorm.DB, query string, opts SearchOptions) ([]User, error) {
	pattern := database.ContainsPattern(query)

	byUsername, err := searchColumn(db, "username", pattern, opts)
	if err != nil {
		return nil, err
	}
	byEmail, err := searchColumn(db, "email", pattern, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(byUsername)+len(byEmail))
	merged := make([]User, 0, len(byUsername)+len(byEmail))
	for _, list := range [][]User{byUsername, byEmail} {
		for _, u := range list {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			merged = append(merged, u)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Username < merged[j].Username })
	if opts.Limit > 0 && len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	return merged, nil
}

func searchColumn(db *gorm.DB, column, pattern string, opts SearchOptions) ([]User, error) {
	q := db.Model(&User{}).Where(column+" LIKE ?"+database.LikeEscapeClause, pattern)
	if len(opts.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", opts.ExcludeIDs)
	}
	if opts.Limit > 0 {
		q = q.Order("username asc").Limit(opts.Limit)
	}

	var users []User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("按%s搜索用户失败: %w", column, err)
	}
	return users, nil
}
