package respond

import (
	"errors"
	"net/http"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/logging"
	"github.com/gin-gonic/gin"
)

// Error 将业务错误转换为HTTP响应。
// 类型化错误使用其自身的信息，其余错误统一返回500并只在日志中保留细节。
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logging.FromContext(c).WithError(err).Error("内部错误")
		c.JSON(status, gin.H{"error": "服务器内部错误"})
		return
	}

	var appErr *apperr.Error
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": message, "code": kind.String()})
}

// BadRequest 用于请求体绑定失败的场景
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error(), "code": apperr.KindValidation.String()})
}
