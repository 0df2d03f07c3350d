package health

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// State 定义了Redis缓存层的健康状态
type State int

const (
	StateHealthy State = iota
	StateDegraded
	// StateRecovering 表示检测到Redis重启，正在清理可能过期的缓存
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateRecovering:
		return "recovering"
	}
	return "unknown"
}

// statusManager 负责线程安全地推进健康状态
type statusManager struct {
	mu             sync.RWMutex
	currentState   State
	lastKnownRunID string
}

func newStatusManager(initialRunID string) *statusManager {
	return &statusManager{currentState: StateHealthy, lastKnownRunID: initialRunID}
}

func (sm *statusManager) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// Assess 根据一次探测结果决定下一个状态，返回是否需要执行恢复操作
func (sm *statusManager) Assess(connected bool, runID string) (needsRecovery bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	restarted := connected && sm.lastKnownRunID != "" && sm.lastKnownRunID != runID

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			logrus.Warn("健康检查: Redis连接丢失，系统状态 -> [降级]")
		} else if restarted {
			sm.currentState = StateRecovering
			needsRecovery = true
			logrus.WithFields(logrus.Fields{"from": sm.lastKnownRunID, "to": runID}).Warn("健康检查: 检测到Redis重启，系统状态 -> [恢复中]")
		}
	case StateDegraded:
		if connected {
			// 断线期间无法确认缓存是否仍然有效，恢复连接后一律先清理
			sm.currentState = StateRecovering
			needsRecovery = true
			logrus.Info("健康检查: Redis连接已恢复，系统状态 -> [恢复中]")
		}
	case StateRecovering:
		if !connected {
			sm.currentState = StateDegraded
			logrus.Warn("健康检查: 恢复期间Redis连接再次丢失，系统状态 -> [降级]")
		} else {
			needsRecovery = true
			logrus.Info("健康检查: 上次恢复未完成，将再次尝试")
		}
	}

	if connected {
		sm.lastKnownRunID = runID
	}
	return needsRecovery
}

// MarkDegraded 在业务侧报告Redis故障时调用，使下一次成功探测进入 [恢复中]
func (sm *statusManager) MarkDegraded() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.currentState == StateHealthy {
		sm.currentState = StateDegraded
		logrus.Warn("健康检查: 业务侧报告Redis故障，系统状态 -> [降级]")
	}
}

// MarkRecovered 在恢复操作结束后调用。恢复期间Redis再次重启时保持 [恢复中]。
func (sm *statusManager) MarkRecovered(success bool, runIDAfter string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.currentState != StateRecovering {
		return
	}
	if success && sm.lastKnownRunID != runIDAfter {
		logrus.WithFields(logrus.Fields{"from": sm.lastKnownRunID, "to": runIDAfter}).Error("健康检查错误: 恢复期间Redis再次重启，保持[恢复中]")
		sm.lastKnownRunID = runIDAfter
		return
	}
	if success {
		sm.currentState = StateHealthy
		logrus.Info("健康检查: 缓存恢复完成，系统状态 -> [健康]")
	} else {
		logrus.Error("健康检查错误: 缓存恢复失败，保持[恢复中]以待重试")
	}
}
