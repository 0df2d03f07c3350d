package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWaitsForServices(t *testing.T) {
	m := NewManager("test")

	stopped := make(chan struct{})
	require.NoError(t, m.Go("ticker", func(h *Handle) {
		defer h.Close()
		for {
			if err := h.Sleep(10 * time.Millisecond); err != nil {
				close(stopped)
				return
			}
		}
	}))

	m.Shutdown()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
	<-stopped
}

func TestManagerReportsStuckServices(t *testing.T) {
	m := NewManager("test")

	h, err := m.NewServiceHandle("stuck")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("stuck")
	assert.Error(t, err, "同名服务不能重复注册")

	m.Shutdown()
	assert.Equal(t, []string{"stuck"}, m.WaitWithTimeout(20*time.Millisecond))

	h.Close()
	h.Close()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
}

func TestHandleSleepCompletes(t *testing.T) {
	m := NewManager("test")
	h, err := m.NewServiceHandle("sleeper")
	require.NoError(t, err)
	defer h.Close()

	assert.NoError(t, h.Sleep(time.Millisecond))
	assert.NoError(t, h.Err())
}
