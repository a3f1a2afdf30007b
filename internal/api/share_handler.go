package api

import (
	"net/http"
	"strconv"

	"filetrace/internal/service"

	"github.com/gin-gonic/gin"
)

// ShareHandler 处理分享管理与公开访问两类请求
type ShareHandler struct {
	shareService  *service.ShareService
	accessService *service.ShareAccessService
}

func NewShareHandler(shareService *service.ShareService, accessService *service.ShareAccessService) *ShareHandler {
	return &ShareHandler{
		shareService:  shareService,
		accessService: accessService,
	}
}

// CreateShare 创建分享（link或user）
func (h *ShareHandler) CreateShare(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req service.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	share, err := h.shareService.CreateShare(userID, req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"share": share})
}

// ListShares 列出文件的分享。
// 默认只列当前有效的，?all=true时包含已撤销/已过期的。
func (h *ShareHandler) ListShares(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	activeOnly := c.Query("all") != "true"
	shares, err := h.shareService.ListShares(userID, c.Param("file_id"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// RevokeShare 撤销单条分享
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	shareID, err := strconv.ParseUint(c.Param("share_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid share id"})
		return
	}

	affected, err := h.shareService.RevokeShare(userID, uint(shareID), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked_count": affected})
}

// RevokeAllShares 撤销文件的全部分享
func (h *ShareHandler) RevokeAllShares(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	affected, err := h.shareService.RevokeAllShares(userID, c.Param("file_id"), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked_count": affected})
}

// PreviewShare 公开端点：预览分享的文件元数据，不消耗访问次数
func (h *ShareHandler) PreviewShare(c *gin.Context) {
	preview, err := h.accessService.ResolveToken(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"share": preview})
}

// ConsumeShare 公开端点：消耗一次访问并返回下载URL
func (h *ShareHandler) ConsumeShare(c *gin.Context) {
	result, err := h.accessService.AccessViaToken(
		c.Request.Context(), c.Param("token"), actorFromContext(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id":      result.FileID,
		"file_name":    result.FileName,
		"download_url": result.DownloadURL,
	})
}
