/*
 * @Description: 业务错误到 HTTP 状态码的统一映射
 * @Author: 安知鱼
 * @Date: 2025-09-04 10:02:51
 * @LastEditTime: 2025-11-07 17:55:08
 * @LastEditors: 安知鱼
 */
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
)

// Error 将业务层返回的错误翻译为对应的 HTTP 响应。
// 所有 Handler 共用这一张映射表；未识别的错误一律按内部错误处理，
// 记录日志但不把细节透给客户端。
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrBadRequest),
		errors.Is(err, constant.ErrSelfDeleteForbidden):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, constant.ErrUnauthorized),
		errors.Is(err, constant.ErrInvalidToken):
		Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, constant.ErrForbidden):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, constant.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrConflict):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, constant.ErrStorageUnavailable):
		Fail(c, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("请求处理失败", "path", c.Request.URL.Path, "error", err)
		Fail(c, http.StatusInternalServerError, constant.ErrInternalServer.Error())
	}
}
