package api

import (
	"net/http"

	"filetrace/internal/service"
	"filetrace/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileHandler 处理文件相关的API请求
type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// CreateFile 登记文件元数据，返回用于上传内容的预签名URL
func (h *FileHandler) CreateFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req service.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	file, uploadURL, err := h.fileService.CreateFile(c.Request.Context(), userID, req, c.ClientIP())
	if err != nil {
		logger.L.Error("Failed to create file", zap.Error(err), zap.String("name", req.Name))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file":       file,
		"upload_url": uploadURL,
	})
}

// ListFiles 列出当前用户的全部文件
func (h *FileHandler) ListFiles(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	files, err := h.fileService.ListFiles(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetFile 获取单个文件的元数据
func (h *FileHandler) GetFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	file, err := h.fileService.GetFile(userID, c.Param("file_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": file})
}

// DownloadFile 返回文件的预签名下载URL
func (h *FileHandler) DownloadFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	url, err := h.fileService.DownloadFile(c.Request.Context(), userID, c.Param("file_id"), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_url": url})
}

// RenameFile 重命名文件
func (h *FileHandler) RenameFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.fileService.RenameFile(userID, c.Param("file_id"), req.Name, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File renamed"})
}

// DeleteFile 删除文件（连带撤销全部分享）
func (h *FileHandler) DeleteFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), userID, c.Param("file_id"), c.ClientIP()); err != nil {
		logger.L.Error("Failed to delete file", zap.Error(err), zap.String("fileID", c.Param("file_id")))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
