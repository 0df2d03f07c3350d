package startup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/platform/metadata"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func fingerprint(defs []achievement.Definition) (string, error) {
	data, err := json.Marshal(defs)
	if err != nil {
		return "", fmt.Errorf("无法计算成就目录指纹: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SyncCatalog 用目录文件（path 为空时用内置目录）同步成就表。
// 目录内容与上次同步时相同则跳过写入。
func SyncCatalog(db *gorm.DB, path string) error {
	defs := achievement.DefaultCatalog()
	if path != "" {
		loaded, err := achievement.LoadCatalogFile(path)
		if err != nil {
			return err
		}
		defs = loaded
		logrus.WithField("file", path).Info("使用外部成就目录")
	}

	sum, err := fingerprint(defs)
	if err != nil {
		return err
	}
	previous, err := metadata.GetValue(db, metadata.CatalogFingerprintKey)
	if err != nil {
		return err
	}
	if previous == sum {
		logrus.WithField("fingerprint", sum[:12]).Info("成就目录未变化，跳过同步")
		return nil
	}

	if err := achievement.SeedCatalog(db, defs); err != nil {
		return err
	}
	return metadata.SetValue(db, metadata.CatalogFingerprintKey, sum)
}
