package validator

import "testing"

func TestValidateFileSize(t *testing.T) {
	rules := NewUploadRules(1024, nil)

	if err := rules.ValidateFileSize(512); err != nil {
		t.Fatalf("size within limit rejected: %v", err)
	}
	if err := rules.ValidateFileSize(0); err != nil {
		t.Fatalf("zero size should pass for streaming uploads: %v", err)
	}
	if err := rules.ValidateFileSize(2048); err == nil {
		t.Fatal("oversized upload accepted")
	}
	if err := rules.ValidateFileSize(-1); err == nil {
		t.Fatal("negative size accepted")
	}

	unlimited := NewUploadRules(0, nil)
	if err := unlimited.ValidateFileSize(1 << 40); err != nil {
		t.Fatalf("unlimited rules rejected size: %v", err)
	}
}

func TestValidateMimeType(t *testing.T) {
	rules := NewUploadRules(0, []string{"audio/mpeg", "Text/VTT"})

	if err := rules.ValidateMimeType("audio/mpeg"); err != nil {
		t.Fatalf("whitelisted type rejected: %v", err)
	}
	if err := rules.ValidateMimeType("text/vtt; charset=utf-8"); err != nil {
		t.Fatalf("parameters should be stripped before matching: %v", err)
	}
	if err := rules.ValidateMimeType("application/zip"); err == nil {
		t.Fatal("non-whitelisted type accepted")
	}
	if err := rules.ValidateMimeType(""); err == nil {
		t.Fatal("missing content type accepted")
	}

	open := NewUploadRules(0, nil)
	if err := open.ValidateMimeType("application/zip"); err != nil {
		t.Fatalf("empty whitelist should allow all types: %v", err)
	}
}
