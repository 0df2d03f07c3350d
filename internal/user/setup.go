package user

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移用户表结构。
// 用户表归外部账号系统所有，这里迁移只是为了在独立部署和测试中具备相同的结构。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	logrus.Debug("User数据库表迁移成功。")
	return nil
}
