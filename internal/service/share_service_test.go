package service

import (
	"errors"
	"testing"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
)

func intPtr(n int) *int { return &n }

func TestShareService_CreateShareValidation(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  CreateShareRequest
	}{
		{
			name: "Neither limit provided",
			req: CreateShareRequest{
				FileID: env.file.ID,
				Kind:   model.ShareKindLink,
			},
		},
		{
			name: "Zero expiration minutes",
			req: CreateShareRequest{
				FileID:            env.file.ID,
				Kind:              model.ShareKindLink,
				ExpirationMinutes: intPtr(0),
			},
		},
		{
			name: "Negative expiration minutes",
			req: CreateShareRequest{
				FileID:            env.file.ID,
				Kind:              model.ShareKindLink,
				ExpirationMinutes: intPtr(-60),
			},
		},
		{
			name: "Below minimum of 10 minutes",
			req: CreateShareRequest{
				FileID:            env.file.ID,
				Kind:              model.ShareKindLink,
				ExpirationMinutes: intPtr(5),
			},
		},
		{
			name: "Above maximum of one year",
			req: CreateShareRequest{
				FileID:            env.file.ID,
				Kind:              model.ShareKindLink,
				ExpirationMinutes: intPtr(600000),
			},
		},
		{
			name: "User share without recipient",
			req: CreateShareRequest{
				FileID:         env.file.ID,
				Kind:           model.ShareKindUser,
				MaxAccessCount: intPtr(3),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.share.CreateShare(env.owner.ID, tt.req, "127.0.0.1")
			if !apperr.IsValidation(err) {
				t.Errorf("CreateShare() error = %v, want validation error", err)
			}
		})
	}
}

func TestShareService_CreateLinkShare(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	info, err := env.share.CreateShare(env.owner.ID, CreateShareRequest{
		FileID:            env.file.ID,
		Kind:              model.ShareKindLink,
		ExpirationMinutes: intPtr(60),
		MaxAccessCount:    intPtr(5),
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateShare() error = %v", err)
	}

	if info.ShareURL == "" {
		t.Error("link share should carry a share URL")
	}
	if info.RemainingAccesses == nil || *info.RemainingAccesses != 5 {
		t.Errorf("RemainingAccesses = %v, want 5", info.RemainingAccesses)
	}
	if info.ExpiresAt == nil {
		t.Error("ExpiresAt should be set")
	}

	// 创建动作进入审计
	if got := countAuditEntries(t, model.AuditActionShareCreate); got != 1 {
		t.Errorf("share.create entries = %d, want 1", got)
	}
}

func TestShareService_CreateUserShare(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	recipient := &model.User{Username: "friend", Password: "x", Email: "friend@example.com"}
	if err := env.userRepo.Create(recipient); err != nil {
		t.Fatalf("Failed to create recipient: %v", err)
	}

	req := CreateShareRequest{
		FileID:            env.file.ID,
		Kind:              model.ShareKindUser,
		RecipientUsername: "friend",
		ExpirationMinutes: intPtr(60),
	}

	info, err := env.share.CreateShare(env.owner.ID, req, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateShare() error = %v", err)
	}
	if info.ShareURL != "" {
		t.Error("user share should not carry a share URL")
	}
	if info.RecipientName != "friend" {
		t.Errorf("RecipientName = %s, want friend", info.RecipientName)
	}

	// 重复分享给同一用户报冲突
	_, err = env.share.CreateShare(env.owner.ID, req, "127.0.0.1")
	if !errors.Is(err, apperr.ErrDuplicateShare) {
		t.Errorf("duplicate CreateShare() error = %v, want ErrDuplicateShare", err)
	}

	// 不能分享给自己
	req.RecipientUsername = "owner"
	_, err = env.share.CreateShare(env.owner.ID, req, "127.0.0.1")
	if !apperr.IsValidation(err) {
		t.Errorf("self-share error = %v, want validation error", err)
	}

	// 不存在的接收者
	req.RecipientUsername = "nobody"
	_, err = env.share.CreateShare(env.owner.ID, req, "127.0.0.1")
	if !apperr.IsValidation(err) {
		t.Errorf("unknown recipient error = %v, want validation error", err)
	}
}

func TestShareService_CreateShareForeignFile(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	stranger := &model.User{Username: "stranger", Password: "x", Email: "stranger@example.com"}
	if err := env.userRepo.Create(stranger); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	// 只有文件所有者才能创建分享
	_, err := env.share.CreateShare(stranger.ID, CreateShareRequest{
		FileID:            env.file.ID,
		Kind:              model.ShareKindLink,
		ExpirationMinutes: intPtr(60),
	}, "127.0.0.1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("CreateShare() on foreign file: error = %v, want ErrNotFound", err)
	}
}

func TestShareService_ListSharesRemainingAccesses(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	grant, err := env.shareRepo.CreateLinkShare(env.file.ID, env.owner.ID, nil, intPtr(10))
	if err != nil {
		t.Fatalf("CreateLinkShare() error = %v", err)
	}
	for i := 0; i < 7; i++ {
		if err := env.shareRepo.IncrementAccess(grant.ID); err != nil {
			t.Fatalf("IncrementAccess() error = %v", err)
		}
	}

	shares, err := env.share.ListShares(env.owner.ID, env.file.ID, true)
	if err != nil {
		t.Fatalf("ListShares() error = %v", err)
	}
	if len(shares) != 1 {
		t.Fatalf("ListShares() = %d shares, want 1", len(shares))
	}
	if shares[0].RemainingAccesses == nil || *shares[0].RemainingAccesses != 3 {
		t.Errorf("RemainingAccesses = %v, want 3", shares[0].RemainingAccesses)
	}
}

func TestShareService_RevokeShare(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	grant, err := env.shareRepo.CreateLinkShare(env.file.ID, env.owner.ID, nil, intPtr(3))
	if err != nil {
		t.Fatalf("CreateLinkShare() error = %v", err)
	}

	affected, err := env.share.RevokeShare(env.owner.ID, grant.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("RevokeShare() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("RevokeShare() affected = %d, want 1", affected)
	}

	// 重复撤销幂等，且不再产生审计记录
	affected, err = env.share.RevokeShare(env.owner.ID, grant.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("second RevokeShare() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("second RevokeShare() affected = %d, want 0", affected)
	}
	if got := countAuditEntries(t, model.AuditActionShareRevoke); got != 1 {
		t.Errorf("share.revoke entries = %d, want 1", got)
	}

	// 非所有者不能撤销
	stranger := &model.User{Username: "stranger2", Password: "x", Email: "stranger2@example.com"}
	if err := env.userRepo.Create(stranger); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	grant2, err := env.shareRepo.CreateLinkShare(env.file.ID, env.owner.ID, nil, intPtr(3))
	if err != nil {
		t.Fatalf("CreateLinkShare() error = %v", err)
	}
	_, err = env.share.RevokeShare(stranger.ID, grant2.ID, "127.0.0.1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign RevokeShare() error = %v, want ErrNotFound", err)
	}
}

func TestShareService_RevokeAllShares(t *testing.T) {
	setupTestDB(t)
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		if _, err := env.shareRepo.CreateLinkShare(env.file.ID, env.owner.ID, nil, intPtr(3)); err != nil {
			t.Fatalf("CreateLinkShare() error = %v", err)
		}
	}

	affected, err := env.share.RevokeAllShares(env.owner.ID, env.file.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("RevokeAllShares() error = %v", err)
	}
	if affected != 3 {
		t.Errorf("RevokeAllShares() affected = %d, want 3", affected)
	}

	shares, err := env.share.ListShares(env.owner.ID, env.file.ID, true)
	if err != nil {
		t.Fatalf("ListShares() error = %v", err)
	}
	if len(shares) != 0 {
		t.Errorf("active shares after bulk revoke = %d, want 0", len(shares))
	}
}
