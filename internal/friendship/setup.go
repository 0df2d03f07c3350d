package friendship

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移好友关系表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Friendship{}); err != nil {
		return fmt.Errorf("无法迁移friendship表: %w", err)
	}
	logrus.Debug("Friendship数据库表迁移成功。")
	return nil
}
