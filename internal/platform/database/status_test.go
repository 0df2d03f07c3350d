package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportRedisFailure(t *testing.T) {
	t.Cleanup(func() {
		UpdateRedisStatus(false)
		TakeRedisFailure()
	})

	UpdateRedisStatus(true)
	assert.False(t, TakeRedisFailure())

	ReportRedisFailure()
	assert.False(t, globalStatus.isRedisHealthy)
	assert.True(t, TakeRedisFailure())
	assert.False(t, TakeRedisFailure(), "标记只能被取走一次")

	// 健康检查器随后可以重新置为可用
	UpdateRedisStatus(true)
	assert.True(t, globalStatus.isRedisHealthy)
}
