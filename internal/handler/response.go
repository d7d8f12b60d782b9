package handler

import (
	"errors"
	"net/http"

	"github.com/blues/sfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Pagination 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// LedgerErrorResponse 把账本错误码映射为HTTP状态返回
func LedgerErrorResponse(c *gin.Context, err error) {
	var le *ledger.Error
	if !errors.As(err, &le) {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	var status int
	switch le.Code {
	case ledger.CodeInvalidArgument:
		status = http.StatusBadRequest
	case ledger.CodeNotFound:
		status = http.StatusNotFound
	case ledger.CodeUnauthorized:
		status = http.StatusForbidden
	case ledger.CodePreconditionFailed, ledger.CodeAlreadyClaimed,
		ledger.CodeAlreadyResolved, ledger.CodeNothingToWithdraw:
		status = http.StatusConflict
	default:
		// OVERFLOW / ID_COLLISION / TRANSFER_FAILED 都是致命内部错误
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{
		Success: false,
		Message: le.Error(),
		Data:    gin.H{"code": string(le.Code)},
	})
}
