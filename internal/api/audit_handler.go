package api

import (
	"net/http"
	"strconv"

	"filetrace/internal/service"

	"github.com/gin-gonic/gin"
)

// AuditHandler 处理审计记录查询
type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListFileAudit 列出文件的审计记录，仅文件所有者可见，最新的在前
func (h *AuditHandler) ListFileAudit(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.auditService.ListForFile(userID, c.Param("file_id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
