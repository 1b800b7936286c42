package security

import (
	"errors"
	"testing"
)

func TestCheckPathTraversal(t *testing.T) {
	tests := []struct {
		path   string
		reject bool
	}{
		{"OEBPS/images/cover.jpg", false},
		{"mimetype", false},
		{"META-INF/container.xml", false},
		{"chapter..xhtml", false},
		{"../../../etc/passwd", true},
		{"/etc/passwd", true},
		{"\\windows\\path", true},
		{"C:\\Windows\\System32", true},
		{"c:/lower/drive", true},
		{"OEBPS/../../escape", true},
	}

	for _, tt := range tests {
		err := CheckPathTraversal(tt.path)
		if tt.reject && err == nil {
			t.Errorf("CheckPathTraversal(%q) = nil, want error", tt.path)
		}
		if !tt.reject && err != nil {
			t.Errorf("CheckPathTraversal(%q) = %v, want nil", tt.path, err)
		}
	}
}

func TestCheckCompressionRatio(t *testing.T) {
	limits := DefaultLimits()

	// Ratio 1000:1 exceeds the default limit of 100:1.
	if err := CheckCompressionRatio(100, 100_000, limits); err == nil {
		t.Error("ratio 1000:1 accepted, want rejection")
	}

	// Ratio 50:1 is fine.
	if err := CheckCompressionRatio(1000, 50_000, limits); err != nil {
		t.Errorf("ratio 50:1 rejected: %v", err)
	}

	// Zero compressed with nonzero output is an unbounded ratio.
	if err := CheckCompressionRatio(0, 1, limits); err == nil {
		t.Error("0-compressed/1-uncompressed accepted, want rejection")
	}

	// Zero/zero is accepted (directory markers, empty stored entries).
	if err := CheckCompressionRatio(0, 0, limits); err != nil {
		t.Errorf("0/0 rejected: %v", err)
	}

	var ratioErr *RatioError
	err := CheckCompressionRatio(10, 100_000, limits)
	if !errors.As(err, &ratioErr) {
		t.Fatalf("error type = %T, want *RatioError", err)
	}
	if ratioErr.Ratio != 10_000 || ratioErr.Limit != 100 {
		t.Errorf("RatioError = %d:%d, want 10000:100", ratioErr.Ratio, ratioErr.Limit)
	}
}

func TestCheckFileCount(t *testing.T) {
	limits := DefaultLimits()

	if err := CheckFileCount(10_000, limits); err != nil {
		t.Errorf("count at limit rejected: %v", err)
	}
	if err := CheckFileCount(10_001, limits); err == nil {
		t.Error("count above limit accepted")
	}
}

func TestCheckResourceSize(t *testing.T) {
	limits := Limits{MaxResourceSizeBytes: 1024}

	if err := CheckResourceSize("small.png", 1024, limits); err != nil {
		t.Errorf("size at limit rejected: %v", err)
	}

	err := CheckResourceSize("big.png", 2048, limits)
	var sizeErr *ResourceSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("error type = %T, want *ResourceSizeError", err)
	}
	if sizeErr.Name != "big.png" {
		t.Errorf("Name = %q, want %q", sizeErr.Name, "big.png")
	}
}

func TestCheckTotalSize(t *testing.T) {
	limits := Limits{MaxTotalSizeBytes: 100}

	if err := CheckTotalSize(100, limits); err != nil {
		t.Errorf("total at limit rejected: %v", err)
	}
	if err := CheckTotalSize(101, limits); err == nil {
		t.Error("total above limit accepted")
	}
}

func TestCheckNestingDepth(t *testing.T) {
	limits := Limits{MaxNestingDepth: 5}

	if err := CheckNestingDepth(5, limits); err != nil {
		t.Errorf("depth at limit rejected: %v", err)
	}
	if err := CheckNestingDepth(6, limits); err == nil {
		t.Error("depth above limit accepted")
	}
}
