package model

import "testing"

func TestValidAuditAction(t *testing.T) {
	valid := []string{
		AuditActionFileUpload, AuditActionFileDownload,
		AuditActionFileRename, AuditActionFileDelete,
		AuditActionShareCreate, AuditActionShareRevoke,
		AuditActionShareAccess, AuditActionShareDenied,
	}
	for _, action := range valid {
		if !ValidAuditAction(action) {
			t.Errorf("ValidAuditAction(%q) = false, want true", action)
		}
	}

	invalid := []string{"", "file.unknown", "share.view", "access_denied"}
	for _, action := range invalid {
		if ValidAuditAction(action) {
			t.Errorf("ValidAuditAction(%q) = true, want false", action)
		}
	}
}
