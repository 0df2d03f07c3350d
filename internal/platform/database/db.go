package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的数据库连接，供各模块的handler使用
var DB *gorm.DB

// parseLogLevel 将配置中的字符串转换为GORM日志级别
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Open 根据配置打开一个数据库连接，但不修改全局变量
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// GORM日志通过logrus输出，与应用日志保持同一格式
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  parseLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres模式下必须提供 database.dsn")
		}
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		path := cfg.SqlitePath
		if path == "" {
			path = "reaction_game.db"
		}
		dialector = sqlite.Open(path + "?_busy_timeout=5000&_journal_mode=WAL")
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("无法获取底层连接池: %w", err)
	}
	if strings.ToLower(cfg.Driver) == "postgres" {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	} else {
		// SQLite 只允许一个写者，单连接可以避免 SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(cfg config.DatabaseConfig) {
	db, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	DB = db
	logrus.WithField("driver", cfg.Driver).Info("数据库连接成功！")
}

// CloseDB 关闭全局数据库连接
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
