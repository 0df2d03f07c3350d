// Package metadata 提供一个简单的键值表，用于保存与业务数据无关的系统状态，
// 例如上次同步的成就目录指纹。
package metadata

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogFingerprintKey 保存上次写入数据库的成就目录的SHA-256指纹
const CatalogFingerprintKey = "achievement_catalog_fingerprint"

// Metadata 定义了存储系统元数据的键值对表结构
type Metadata struct {
	Key       string `gorm:"primaryKey;type:varchar(255)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Metadata) TableName() string {
	return "metadata"
}

// Migrate 负责自动迁移metadata表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	logrus.Debug("Metadata数据库表迁移成功。")
	return nil
}

// GetValue 读取键对应的值，键不存在时返回空字符串
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取元数据 '%s' 失败: %w", key, err)
	}
	return meta.Value, nil
}

// SetValue 原子地插入或更新键值
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
	if err != nil {
		return fmt.Errorf("写入元数据 '%s' 失败: %w", key, err)
	}
	return nil
}
