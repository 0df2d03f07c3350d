package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/pkg/lifecycle"
	"github.com/sirupsen/logrus"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// getRedisRunID 从Redis服务器信息中提取run_id，Redis每次重启都会换一个新的run_id
func getRedisRunID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := database.RDB.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// RecoveryFunc 在Redis重启或断线恢复后执行，用于清理可能过期的缓存
type RecoveryFunc func(ctx context.Context) error

// Checker 定期探测Redis，并把结果同步到 database 的健康标志
type Checker struct {
	status    *statusManager
	onRecover RecoveryFunc
	interval  time.Duration
}

// NewChecker 获取初始run_id并创建检查器。Redis未启用时返回nil。
func NewChecker(ctx context.Context, onRecover RecoveryFunc) (*Checker, error) {
	if database.RDB == nil {
		return nil, nil
	}
	runID, err := getRedisRunID(ctx)
	if err != nil {
		// 没有检查器就没有人能再更新健康标志，这里必须先停用Redis
		database.UpdateRedisStatus(false)
		return nil, fmt.Errorf("无法在启动时获取Redis Run ID: %w", err)
	}
	logrus.WithField("run_id", runID).Info("获取初始Redis Run ID成功")
	return &Checker{
		status:    newStatusManager(runID),
		onRecover: onRecover,
		interval:  checkInterval,
	}, nil
}

// State 返回当前状态
func (c *Checker) State() State {
	return c.status.State()
}

// PerformCheck 执行一次完整的健康检查和可能的恢复操作
func (c *Checker) PerformCheck(ctx context.Context) {
	if database.TakeRedisFailure() {
		c.status.MarkDegraded()
	}

	runID, err := getRedisRunID(ctx)
	connected := err == nil
	if !connected {
		logrus.WithError(err).Debug("健康检查: Redis探测失败")
	}

	if c.status.Assess(connected, runID) {
		ok := c.onRecover == nil
		if c.onRecover != nil {
			if err := c.onRecover(ctx); err != nil {
				logrus.WithError(err).Error("健康检查错误: 缓存恢复失败")
			} else {
				ok = true
			}
		}
		after, err := getRedisRunID(ctx)
		if err != nil {
			ok = false
		}
		c.status.MarkRecovered(ok, after)
	}

	database.UpdateRedisStatus(c.status.State() == StateHealthy)
}

// Run 在后台循环执行健康检查，直到生命周期句柄被取消
func (c *Checker) Run(h *lifecycle.Handle) {
	defer h.Close()
	logrus.Info("Redis健康检查器已启动。")

	for {
		if err := h.Sleep(c.interval); err != nil {
			logrus.Info("Redis健康检查器已停止。")
			return
		}
		c.PerformCheck(h.Ctx())
	}
}
