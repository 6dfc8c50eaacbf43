package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"schedule-viewer/pkg/response"
)

// studentIDMaxLen 学号最大长度，超出视为非法参数
const studentIDMaxLen = 32

// MustGetStudentID 从路径参数 :id 中提取学号。
// 学号为空或过长时写入 400 响应并返回 false，调用方应直接 return。
func MustGetStudentID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.BadRequest(c, response.CodeInvalidParam, "Vui lòng nhập mã sinh viên")
		return "", false
	}
	if len(id) > studentIDMaxLen {
		response.BadRequest(c, response.CodeInvalidParam, "Mã sinh viên không hợp lệ")
		return "", false
	}
	return id, true
}
