package controller

import (
	"exam_reviewer_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// uintParam 读取必填的正整数参数（query 或 path）
func uintParam(name, raw string) (uint, error) {
	if raw == "" {
		return 0, util.NewValidationError(name, "is required")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, util.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// optionalUintQuery 参数缺省时返回 0
func optionalUintQuery(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}
	return uintParam(name, raw)
}
