package database

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// statusManager 负责线程安全地管理Redis的健康状态。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
	// failureReported 表示业务侧遇到过Redis写入失败，缓存可能已经过期
	failureReported bool
}

// 全局的状态管理器实例。启动时默认不可用，直到连接成功。
var globalStatus = &statusManager{}

// IsRedisHealthy 返回当前Redis是否可用。未启用Redis时总是返回false。
func IsRedisHealthy() bool {
	if RDB == nil {
		return false
	}
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateRedisStatus 线程安全地更新健康状态，只有状态变化时才打印日志。
func UpdateRedisStatus(isHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy == isHealthy {
		return
	}
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy {
		logrus.Info("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		logrus.Warn("健康检查警告: Redis服务状态已更新为 [不可用]")
	}
}

// ReportRedisFailure 在业务侧Redis写入失败时调用：立即标记为不可用，
// 并留下标记，让健康检查器在连接可用后执行一次恢复操作。
func ReportRedisFailure() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	globalStatus.failureReported = true
	if globalStatus.isRedisHealthy {
		globalStatus.isRedisHealthy = false
		logrus.Warn("Redis写入失败，服务状态已更新为 [不可用]，等待健康检查恢复")
	}
}

// TakeRedisFailure 返回并清除 ReportRedisFailure 留下的标记
func TakeRedisFailure() bool {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	reported := globalStatus.failureReported
	globalStatus.failureReported = false
	return reported
}
