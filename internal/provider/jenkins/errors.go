package jenkins

import (
	"errors"
	"fmt"
)

// ErrorKind 错误类别
// 调用方 (以及最终的 Agent 层) 依赖这些类别决定重试还是放弃
type ErrorKind string

const (
	KindInvalidReference   ErrorKind = "invalid_reference"
	KindAuthentication     ErrorKind = "authentication"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindJobNotFound        ErrorKind = "job_not_found"
	KindNoBuildsFound      ErrorKind = "no_builds_found"
	KindBuildNotFound      ErrorKind = "build_not_found"
	KindConnectivity       ErrorKind = "connectivity"
	KindUnexpectedResponse ErrorKind = "unexpected_response"
)

// Error 带类别的 Jenkins 错误
type Error struct {
	Kind    ErrorKind
	Op      string // 出错的操作, 如 "get_job_info"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("jenkins: %s: %s", e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 提取错误类别, 非本包错误返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
