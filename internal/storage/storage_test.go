package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"/etc/shadow", "shadow"},
		{`..\..\windows\system32\cmd.exe`, "cmd.exe"},
		{"my file (final).pdf", "my_file_final_.pdf"},
		{"weird***name???.txt", "weird_name_.txt"},
		{"...dots...", "dots"},
		{"___", ""},
		{"", ""},
		{"hällo wörld.png", "h_llo_w_rld.png"},
	}

	for _, tc := range cases {
		got := SanitizeFilename(tc.input)
		want := tc.expected
		if want == "" {
			want = "file"
		}
		if got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.input, got, want)
		}
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("SanitizeFilename(%q) = %q still contains separators", tc.input, got)
		}
	}
}

func TestPaths_PublicURL(t *testing.T) {
	paths, err := NewPaths(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	url := paths.PublicURL("7_1700000000_abc_report.pdf")
	if url != "/uploads/7_1700000000_abc_report.pdf" {
		t.Errorf("Expected prefixed public URL, got %s", url)
	}
}

func TestPaths_DiskPath_PrefixedForm(t *testing.T) {
	root := t.TempDir()
	paths, err := NewPaths(root, "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	got, err := paths.DiskPath("/uploads/stored.pdf")
	if err != nil {
		t.Fatalf("DiskPath failed: %v", err)
	}
	if got != filepath.Join(paths.Root(), "stored.pdf") {
		t.Errorf("Expected path under root, got %s", got)
	}
}

func TestPaths_DiskPath_LegacyBareForm(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	paths, err := NewPaths(root, "/media")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	// Legacy rows persisted "/uploads/name" before the public prefix existed.
	got, err := paths.DiskPath("/uploads/old.txt")
	if err != nil {
		t.Fatalf("DiskPath failed for legacy form: %v", err)
	}
	if got != filepath.Join(paths.Root(), "old.txt") {
		t.Errorf("Expected legacy reference under root, got %s", got)
	}
}

func TestPaths_DiskPath_RoundTrip(t *testing.T) {
	paths, err := NewPaths(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	stored := "42_1700000000_token_file.png"
	got, err := paths.DiskPath(paths.PublicURL(stored))
	if err != nil {
		t.Fatalf("DiskPath failed: %v", err)
	}
	if got != paths.StoredPath(stored) {
		t.Errorf("Round trip mismatch: %s != %s", got, paths.StoredPath(stored))
	}
}

func TestPaths_DiskPath_RejectsEscapes(t *testing.T) {
	paths, err := NewPaths(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	escapes := []string{
		"",
		"/uploads/../secrets.txt",
		"/uploads/../../etc/passwd",
		"/uploads/..",
		"/../outside",
		"/uploads/a/../../b",
	}
	for _, ref := range escapes {
		if _, err := paths.DiskPath(ref); err != ErrCorruptReference {
			t.Errorf("DiskPath(%q) error = %v, want ErrCorruptReference", ref, err)
		}
	}
}

func TestPaths_DiskPath_SanitizedNamesNeverEscape(t *testing.T) {
	paths, err := NewPaths(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	hostile := []string{"../../etc/passwd", "/abs/path", `..\..\boot.ini`, "a/b/../c"}
	for _, name := range hostile {
		stored := SanitizeFilename(name)
		got, err := paths.DiskPath(paths.PublicURL(stored))
		if err != nil {
			t.Errorf("sanitized name %q should resolve, got error %v", name, err)
			continue
		}
		if !strings.HasPrefix(got, paths.Root()+string(filepath.Separator)) {
			t.Errorf("sanitized name %q resolved outside root: %s", name, got)
		}
	}
}

func TestPaths_EnsureRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	paths, err := NewPaths(root, "/uploads")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	if err := paths.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	// Must be idempotent.
	if err := paths.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot second call failed: %v", err)
	}
}
