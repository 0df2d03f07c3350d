package achievement

import (
	"encoding/json"
	"fmt"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Definition 是成就目录中一项的声明，按 Name 幂等地写入数据库
type Definition struct {
	Name        string
	Description string
	Type        Type
	Requirement Requirement
	Points      int
}

// DefaultCatalog 是未配置目录文件时使用的内置成就
func DefaultCatalog() []Definition {
	return []Definition{
		{Name: "Newcomer", Description: "Play 3 completed games", Type: TypeGamesPlayed, Requirement: GamesPlayed(3), Points: 0},
		{Name: "Seasoned Player", Description: "Play 5 completed games", Type: TypeGamesPlayed, Requirement: GamesPlayed(5), Points: 25},
		{Name: "Sniper", Description: "Score 500 points in a single game", Type: TypeScore, Requirement: HighScore(500), Points: 0},
		{Name: "Sharpshooter Master", Description: "Score 1000+ points in a single game", Type: TypeScore, Requirement: HighScore(1000), Points: 50},
		{Name: "Quick Hands", Description: "Average reaction time of 500 ms or less", Type: TypeReaction, Requirement: FastReaction(500), Points: 0},
		{Name: "Lightning Reflexes", Description: "Average reaction time of 200 ms or less", Type: TypeReaction, Requirement: FastReaction(200), Points: 75},
	}
}

// fileDefinition 对应目录文件中的一项，requirement 保持原始结构，交给 ParseRequirement 校验
type fileDefinition struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Type        string         `mapstructure:"achievement_type"`
	Requirement map[string]any `mapstructure:"requirement"`
	Points      int            `mapstructure:"points"`
}

// LoadCatalogFile 从YAML/JSON文件读取成就目录，文件格式：
//
//	achievements:
//	  - name: Sniper
//	    description: Score 500 points in a single game
//	    achievement_type: score
//	    requirement: {kind: high_score, min_score: 500}
//	    points: 10
func LoadCatalogFile(path string) ([]Definition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取成就目录文件失败: %w", err)
	}

	var raw []fileDefinition
	if err := v.UnmarshalKey("achievements", &raw); err != nil {
		return nil, fmt.Errorf("解析成就目录文件失败: %w", err)
	}
	if len(raw) == 0 {
		return nil, apperr.Validation("成就目录文件 %s 中没有任何成就", path)
	}

	defs := make([]Definition, 0, len(raw))
	for i, fd := range raw {
		data, err := json.Marshal(fd.Requirement)
		if err != nil {
			return nil, fmt.Errorf("第%d项成就条件无法序列化: %w", i+1, err)
		}
		req, err := ParseRequirement(data)
		if err != nil {
			return nil, fmt.Errorf("第%d项成就 %q: %w", i+1, fd.Name, err)
		}
		defs = append(defs, Definition{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        Type(fd.Type),
			Requirement: req,
			Points:      fd.Points,
		})
	}
	return defs, nil
}

// defaultType 在定义没有指定展示分类时按条件种类补全
func defaultType(kind RequirementKind) Type {
	switch kind {
	case KindHighScore:
		return TypeScore
	case KindFastReaction:
		return TypeReaction
	case KindGamesPlayed:
		return TypeGamesPlayed
	}
	return TypeSpecial
}

func validateDefinition(d *Definition) error {
	if d.Name == "" {
		return apperr.Validation("成就名称不能为空")
	}
	if d.Points < 0 {
		return apperr.Validation("成就 %q 的点数不能为负数", d.Name)
	}
	switch d.Requirement.Kind {
	case KindHighScore, KindFastReaction, KindGamesPlayed:
	default:
		return apperr.Validation("成就 %q 的条件种类无效", d.Name)
	}
	if d.Type == "" {
		d.Type = defaultType(d.Requirement.Kind)
	}
	if !d.Type.Valid() {
		return apperr.Validation("成就 %q 的分类 %q 无效", d.Name, d.Type)
	}
	return nil
}

// SeedCatalog 按名称插入或更新成就目录。任何一项非法时整体回滚。
func SeedCatalog(db *gorm.DB, defs []Definition) error {
	for i := range defs {
		if err := validateDefinition(&defs[i]); err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, d := range defs {
			a := Achievement{
				Name:        d.Name,
				Description: d.Description,
				Type:        d.Type,
				Requirement: d.Requirement,
				Points:      d.Points,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"description", "achievement_type", "requirement", "points"}),
			}).Create(&a).Error
			if err != nil {
				return fmt.Errorf("写入成就 %q 失败: %w", d.Name, err)
			}
		}
		logrus.WithField("count", len(defs)).Info("成就目录已同步")
		return nil
	})
}

// LoadCatalog 返回完整的成就目录，按ID排序
func LoadCatalog(db *gorm.DB) ([]Achievement, error) {
	return ListCatalog(db, "")
}

// ListCatalog 返回成就目录，可按展示分类过滤
func ListCatalog(db *gorm.DB, t Type) ([]Achievement, error) {
	q := db.Model(&Achievement{})
	if t != "" {
		q = q.Where("achievement_type = ?", t)
	}
	achievements := []Achievement{}
	if err := q.Order("id asc").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("读取成就目录失败: %w", err)
	}
	return achievements, nil
}
