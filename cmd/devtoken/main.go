// devtoken 为本地开发签发访问令牌。正式环境的令牌由外部认证服务签发。
//
//	go run ./cmd/devtoken -username alice
//	go run ./cmd/devtoken -user 3 -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/logging"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/SlpAus/reaction-game-backend/pkg/token"
	"github.com/sirupsen/logrus"
)

func main() {
	userID := flag.Uint("user", 0, "已存在用户的ID")
	username := flag.String("username", "", "用户名，不存在时创建一个开发用户")
	ttl := flag.Duration("ttl", 24*time.Hour, "令牌有效期")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("加载配置失败")
	}
	logging.Setup(cfg.Log)

	if cfg.Auth.JWTSecret == "" {
		logrus.Fatal("auth.jwtSecret 为空，随机密钥签发的令牌无法被服务端校验")
	}
	if err := token.Configure(cfg.Auth.JWTSecret, cfg.Auth.Issuer); err != nil {
		logrus.WithError(err).Fatal("初始化令牌失败")
	}

	id := *userID
	if *username != "" {
		id, err = ensureUser(cfg.Database, *username)
		if err != nil {
			logrus.WithError(err).Fatal("准备开发用户失败")
		}
	}
	if id == 0 {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := token.IssueAccessToken(id, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("签发令牌失败")
	}
	fmt.Println(raw)
}

func ensureUser(cfg config.DatabaseConfig, username string) (uint, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return 0, err
	}
	if err := user.Migrate(db); err != nil {
		return 0, err
	}

	u, err := user.FindByUsername(db, username)
	if err != nil {
		return 0, err
	}
	if u != nil {
		return u.ID, nil
	}

	created := user.User{Username: username, Email: username + "@dev.local"}
	if err := db.Create(&created).Error; err != nil {
		return 0, fmt.Errorf("创建开发用户失败: %w", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": created.ID, "username": username}).Info("已创建开发用户")
	return created.ID, nil
}
