package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindForbidden:       http.StatusForbidden,
		KindConflict:        http.StatusConflict,
		KindUnauthenticated: http.StatusUnauthorized,
		KindRateLimited:     http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfFollowsWrapChain(t *testing.T) {
	base := NotFound("对局 %d 不存在", 7)
	wrapped := fmt.Errorf("处理请求失败: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
	assert.Equal(t, "对局 7 不存在", base.Error())

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique constraint")
	err := Wrap(KindConflict, cause, "好友关系已存在")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "好友关系已存在: unique constraint", err.Error())
	assert.Equal(t, "conflict", err.Kind.String())
}
