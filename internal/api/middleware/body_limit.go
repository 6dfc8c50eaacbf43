package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schedule-viewer/pkg/response"
)

const msgBodyTooLarge = "Nội dung yêu cầu quá lớn"

// BodyLimit 请求体大小限制
//
// 声明的 Content-Length 超限时直接拒绝；未声明长度的请求体在读取时截断，
// 由 handler 通过 c.Error 上报 *http.MaxBytesError 后统一转为 413。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, msgBodyTooLarge)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, msgBodyTooLarge)
				return
			}
		}
	}
}
