package api

import (
	"errors"
	"net/http"

	"filetrace/internal/apperr"

	"github.com/gin-gonic/gin"
)

// 从gin上下文中获取认证中间件放入的用户ID
func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// 已认证时返回用户ID指针，匿名访问返回nil。
// 用于分享的公开端点：同一端点登录与否都可访问。
func actorFromContext(c *gin.Context) *uint {
	if id, ok := getUserIDFromContext(c); ok {
		return &id
	}
	return nil
}

// 将业务错误映射为HTTP响应。
// 分享拒绝统一返回404和一条不区分原因的提示，
// 避免暴露"链接曾经存在但已过期"之类的信息。
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrShareDenied):
		c.JSON(http.StatusNotFound, gin.H{"error": "share link is invalid or expired"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrDuplicateShare):
		c.JSON(http.StatusConflict, gin.H{"error": "file is already shared with this user"})
	case errors.Is(err, apperr.ErrTransientStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary server error, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
