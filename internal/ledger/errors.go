package ledger

import (
	"fmt"
	"strings"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 输入校验错误，一次返回所有字段问题
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError 资源不存在错误
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError 状态冲突错误，例如向终态活动追加支持
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InternalError 存储层意外失败，对外不暴露细节
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// 常用资源错误
var (
	ErrCampaignNotFound = &NotFoundError{Resource: "Campaign"}
	ErrCreatorNotFound  = &NotFoundError{Resource: "Creator"}
)

// internalErr 包装存储层错误
func internalErr(err error) error {
	return &InternalError{Err: err}
}
