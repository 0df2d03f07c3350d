package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/pkg/lifecycle"
	"github.com/sirupsen/logrus"
)

const (
	httpTimeout       = 15 * time.Second
	backgroundTimeout = 10 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程：
// 先停止接收请求，再停止后台服务，最后关闭存储连接。
type Coordinator struct {
	Background *lifecycle.Manager
}

// NewCoordinator 创建一个新的停机协调器
func NewCoordinator(background *lifecycle.Manager) *Coordinator {
	return &Coordinator{Background: background}
}

// ListenForSignalsAndShutdown 阻塞直到收到停机信号或服务器异常退出，然后执行停机流程
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server, serverErr <-chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logrus.WithField("signal", sig.String()).Info("收到关闭信号，开始优雅停机...")
	case err := <-serverErr:
		logrus.WithError(err).Error("HTTP服务器异常退出，开始停机...")
	}

	c.Shutdown(server)
}

// Shutdown 执行停机流程，可以在测试中直接调用
func (c *Coordinator) Shutdown(server *http.Server) {
	// 关闭HTTP服务器，允许正在进行的请求完成
	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Gin服务器关闭错误")
	} else {
		logrus.Info("Gin服务器已关闭。")
	}

	if c.Background != nil {
		c.Background.Shutdown()
		if remaining := c.Background.WaitWithTimeout(backgroundTimeout); len(remaining) > 0 {
			logrus.WithField("services", remaining).Warn("部分后台服务未能在超时前退出")
		} else {
			logrus.Info("所有后台服务已关闭。")
		}
	}

	if err := database.CloseRedis(); err != nil {
		logrus.WithError(err).Warn("关闭Redis连接失败")
	}
	if err := database.CloseDB(); err != nil {
		logrus.WithError(err).Warn("关闭数据库连接失败")
	}

	logrus.Info("优雅停机完成。")
}
