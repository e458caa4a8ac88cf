package models

import (
	"errors"
	"net/http"
)

// 错误分类码
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflictStaleWrite = "CONFLICT_STALE_WRITE"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError 带分类码的业务错误
type AppError struct {
	Code string
	Msg  string
}

func (e *AppError) Error() string {
	return e.Msg
}

// HTTPStatus 分类码到 HTTP 状态码的映射
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflictStaleWrite:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidationFailed, Msg: msg}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Code: CodeNotFound, Msg: msg}
}

func StaleWriteError(msg string) *AppError {
	return &AppError{Code: CodeConflictStaleWrite, Msg: msg}
}

func PermissionError(msg string) *AppError {
	return &AppError{Code: CodePermissionDenied, Msg: msg}
}

func InternalError(msg string) *AppError {
	return &AppError{Code: CodeInternal, Msg: msg}
}

// AsAppError 提取业务错误，其余一律归为内部错误
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeInternal, Msg: err.Error()}
}
