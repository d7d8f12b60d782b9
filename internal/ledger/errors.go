package ledger

import (
	"errors"
	"fmt"
)

// Code 账本错误分类
type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"    // 调用参数非法，状态未变
	CodeNotFound           Code = "NOT_FOUND"           // 记录不存在
	CodePreconditionFailed Code = "PRECONDITION_FAILED" // 参数合法但状态不满足
	CodeUnauthorized       Code = "UNAUTHORIZED"        // 调用者身份不符
	CodeAlreadyClaimed     Code = "ALREADY_CLAIMED"     // 退款重放
	CodeAlreadyResolved    Code = "ALREADY_RESOLVED"    // 解密请求终态重写
	CodeOverflow           Code = "OVERFLOW"            // 算术溢出，致命
	CodeIdCollision        Code = "ID_COLLISION"        // 请求ID碰撞，致命
	CodeTransferFailed     Code = "TRANSFER_FAILED"     // 划转失败，标志已置位，需人工介入
	CodeNothingToWithdraw  Code = "NOTHING_TO_WITHDRAW" // 手续费池为空
)

// Error 带分类码的账本错误
//
// 除 TRANSFER_FAILED 外，任何错误返回时被操作的记录保持调用前原样。
type Error struct {
	Code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.msg, e.err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...), err: err}
}

// ErrCode 提取错误分类码，非账本错误返回空串
func ErrCode(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsCode 判断错误是否属于指定分类
func IsCode(err error, code Code) bool {
	return ErrCode(err) == code
}
