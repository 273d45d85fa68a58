package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"washman/backend/internal/service"
	"washman/backend/pkg/response"
)

const maxWeekOffset = service.MaxWeekOffset

// parseWeekOffset 解析周偏移；格式错误或超出范围时写入 400 并返回 false
func parseWeekOffset(c *gin.Context, raw string) (int, bool) {
	offset, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, 10001, "周偏移必须为整数")
		return 0, false
	}
	if offset < -maxWeekOffset || offset > maxWeekOffset {
		response.BadRequest(c, 10001, "周偏移超出范围")
		return 0, false
	}
	return offset, true
}

// bindOptionalJSON 请求体可以为空；非空时必须是合法 JSON
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return false
	}
	return true
}

// bindError 请求体超限返回 413，其余绑定失败返回 400
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}
