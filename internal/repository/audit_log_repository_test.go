package repository

import (
	"testing"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
)

func strPtr(s string) *string { return &s }

func TestAuditLogRepository_CreateValidatesAction(t *testing.T) {
	setupTestDB(t)
	repo := NewAuditLogRepository()

	// 封闭集合之外的动作必须拒绝
	err := repo.Create(&model.AuditLog{
		Action:    "file.teleport",
		IPAddress: "127.0.0.1",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Create() with unknown action: error = %v, want validation error", err)
	}

	entry := &model.AuditLog{
		FileID:    strPtr("file-1"),
		Action:    model.AuditActionShareAccess,
		IPAddress: "127.0.0.1",
		Details:   `{"share_id":1}`,
	}
	if err := repo.Create(entry); err != nil {
		t.Errorf("Create() error = %v", err)
	}
	if entry.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
}

func TestAuditLogRepository_CreateNilFileID(t *testing.T) {
	setupTestDB(t)
	repo := NewAuditLogRepository()

	// 无法关联到文件的拒绝尝试：file_id为空
	entry := &model.AuditLog{
		Action:    model.AuditActionShareDenied,
		IPAddress: "10.0.0.1",
		Details:   `{"reason":"not_found"}`,
	}
	if err := repo.Create(entry); err != nil {
		t.Errorf("Create() with nil file id: error = %v", err)
	}
}

func TestAuditLogRepository_FindByFileOrdering(t *testing.T) {
	setupTestDB(t)
	repo := NewAuditLogRepository()

	actions := []string{
		model.AuditActionFileUpload,
		model.AuditActionShareCreate,
		model.AuditActionShareAccess,
	}
	for _, action := range actions {
		if err := repo.Create(&model.AuditLog{
			FileID:    strPtr("file-1"),
			Action:    action,
			IPAddress: "127.0.0.1",
		}); err != nil {
			t.Fatalf("Create(%s) error = %v", action, err)
		}
	}
	// 其他文件的记录不应出现在结果中
	if err := repo.Create(&model.AuditLog{
		FileID:    strPtr("file-2"),
		Action:    model.AuditActionFileUpload,
		IPAddress: "127.0.0.1",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	entries, err := repo.FindByFile("file-1", 10, 0)
	if err != nil {
		t.Fatalf("FindByFile() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("FindByFile() = %d entries, want 3", len(entries))
	}

	// 最新的在前；时间戳相同时按插入顺序倒排
	if entries[0].Action != model.AuditActionShareAccess {
		t.Errorf("newest entry action = %s, want %s", entries[0].Action, model.AuditActionShareAccess)
	}
	if entries[2].Action != model.AuditActionFileUpload {
		t.Errorf("oldest entry action = %s, want %s", entries[2].Action, model.AuditActionFileUpload)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID > entries[i-1].ID {
			t.Errorf("entries not ordered newest first: id %d before %d", entries[i-1].ID, entries[i].ID)
		}
	}
}

func TestAuditLogRepository_FindByFilePagination(t *testing.T) {
	setupTestDB(t)
	repo := NewAuditLogRepository()

	for i := 0; i < 5; i++ {
		if err := repo.Create(&model.AuditLog{
			FileID:    strPtr("file-1"),
			Action:    model.AuditActionShareAccess,
			IPAddress: "127.0.0.1",
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page1, err := repo.FindByFile("file-1", 2, 0)
	if err != nil {
		t.Fatalf("FindByFile() error = %v", err)
	}
	page2, err := repo.FindByFile("file-1", 2, 2)
	if err != nil {
		t.Fatalf("FindByFile() error = %v", err)
	}
	if len(page1) != 2 || len(page2) != 2 {
		t.Errorf("pagination sizes = %d, %d, want 2, 2", len(page1), len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages should not overlap")
	}
}
