package handler

import (
	"errors"
	"net/http"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Total   *int64              `json:"total,omitempty"`
	Error   string              `json:"error,omitempty"`
	Details []ledger.FieldError `json:"details,omitempty"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessListResponse 带总数的列表响应
func SuccessListResponse(c *gin.Context, data interface{}, total int64) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Total:   &total,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   message,
	})
}

// HandleError 按账本错误分类映射HTTP状态码
//
// 内部错误在 release 模式下不向调用方暴露细节。
func HandleError(c *gin.Context, err error) {
	var (
		validationErr *ledger.ValidationError
		notFoundErr   *ledger.NotFoundError
		conflictErr   *ledger.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "Validation failed",
			Details: validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		ErrorResponse(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		ErrorResponse(c, http.StatusConflict, conflictErr.Error())
	default:
		logger.Error("Internal error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message := "Internal server error"
		if gin.Mode() != gin.ReleaseMode {
			message = err.Error()
		}
		ErrorResponse(c, http.StatusInternalServerError, message)
	}
}
