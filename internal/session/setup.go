package session

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移对局表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&GameSession{}); err != nil {
		return fmt.Errorf("无法迁移session表: %w", err)
	}
	logrus.Debug("Session数据库表迁移成功。")
	return nil
}
