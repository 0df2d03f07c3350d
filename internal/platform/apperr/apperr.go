// Package apperr 定义了业务层向API层返回的类型化错误。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 是机器可读的错误类别
type Kind int

const (
	// KindInternal 表示未被归类的错误，一律映射为500
	KindInternal Kind = iota
	// KindValidation 表示请求参数格式或取值非法
	KindValidation
	// KindNotFound 表示目标会话、好友关系或用户不存在
	KindNotFound
	// KindForbidden 表示调用者无权操作目标对象
	KindForbidden
	// KindConflict 表示重复请求或对终态对象的再次操作
	KindConflict
	// KindUnauthenticated 表示缺少或无法识别的调用者身份
	KindUnauthenticated
	// KindRateLimited 表示调用者在限流窗口内的请求过多
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// HTTPStatus 将错误类别映射到HTTP状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error 是携带类别的业务错误，可以包装底层原因
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Forbidden(format string, args ...any) *Error  { return newf(KindForbidden, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}
func RateLimited(format string, args ...any) *Error { return newf(KindRateLimited, format, args...) }

// Wrap 为底层错误附加类别与说明
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 返回错误链中第一个 *Error 的类别，找不到时返回 KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is 判断错误链中是否存在指定类别的业务错误
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
