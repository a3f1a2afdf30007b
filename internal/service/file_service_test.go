package service

import (
	"context"
	"errors"
	"testing"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
)

func TestFileService_CreateFile(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)
	fileService := NewFileService(env.fileRepo, env.shareRepo, env.storage, env.audit)

	file, uploadURL, err := fileService.CreateFile(context.Background(), env.owner.ID, CreateFileRequest{
		Name:     "notes.txt",
		Size:     256,
		MimeType: "text/plain",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}

	if file.ID == "" {
		t.Error("CreateFile() did not assign an ID")
	}
	if uploadURL == "" {
		t.Error("CreateFile() returned empty upload URL")
	}
	if env.storage.uploads != 1 {
		t.Errorf("presign upload calls = %d, want 1", env.storage.uploads)
	}
	if got := countAuditEntries(t, model.AuditActionFileUpload); got != 1 {
		t.Errorf("file.upload entries = %d, want 1", got)
	}
}

func TestFileService_RenameFile(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)
	fileService := NewFileService(env.fileRepo, env.shareRepo, env.storage, env.audit)

	if err := fileService.RenameFile(env.owner.ID, env.file.ID, "renamed.pdf", "127.0.0.1"); err != nil {
		t.Fatalf("RenameFile() error = %v", err)
	}

	file, err := fileService.GetFile(env.owner.ID, env.file.ID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if file.Name != "renamed.pdf" {
		t.Errorf("Name = %s, want renamed.pdf", file.Name)
	}

	// 空名字拒绝
	if err := fileService.RenameFile(env.owner.ID, env.file.ID, "", "127.0.0.1"); !apperr.IsValidation(err) {
		t.Errorf("RenameFile() with empty name: error = %v, want validation error", err)
	}

	if got := countAuditEntries(t, model.AuditActionFileRename); got != 1 {
		t.Errorf("file.rename entries = %d, want 1", got)
	}
}

func TestFileService_DeleteFileRevokesShares(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)
	fileService := NewFileService(env.fileRepo, env.shareRepo, env.storage, env.audit)

	max := 5
	grant, err := env.shareRepo.CreateLinkShare(env.file.ID, env.owner.ID, nil, &max)
	if err != nil {
		t.Fatalf("CreateLinkShare() error = %v", err)
	}

	if err := fileService.DeleteFile(context.Background(), env.owner.ID, env.file.ID, "127.0.0.1"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}

	// 元数据已删除
	_, err = fileService.GetFile(env.owner.ID, env.file.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetFile() after delete: error = %v, want ErrNotFound", err)
	}

	// 分享已被连带撤销，token此后不可用
	found, err := env.shareRepo.FindByID(grant.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID() = %v, err %v", found, err)
	}
	if found.IsActive {
		t.Error("share should be revoked when file is deleted")
	}

	// 对象存储内容已清理
	if env.storage.deletes != 1 {
		t.Errorf("storage delete calls = %d, want 1", env.storage.deletes)
	}
	if got := countAuditEntries(t, model.AuditActionFileDelete); got != 1 {
		t.Errorf("file.delete entries = %d, want 1", got)
	}
}

func TestFileService_DownloadFile(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)
	fileService := NewFileService(env.fileRepo, env.shareRepo, env.storage, env.audit)

	url, err := fileService.DownloadFile(context.Background(), env.owner.ID, env.file.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if url == "" {
		t.Error("DownloadFile() returned empty URL")
	}
	if got := countAuditEntries(t, model.AuditActionFileDownload); got != 1 {
		t.Errorf("file.download entries = %d, want 1", got)
	}

	// 他人的文件不可下载
	stranger := &model.User{Username: "dl-stranger", Password: "x", Email: "dl@example.com"}
	if err := env.userRepo.Create(stranger); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	_, err = fileService.DownloadFile(context.Background(), stranger.ID, env.file.ID, "127.0.0.1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DownloadFile() on foreign file: error = %v, want ErrNotFound", err)
	}
}
