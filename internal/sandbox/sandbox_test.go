package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("root required", func(t *testing.T) {
		if _, err := New(Config{}); err == nil {
			t.Fatal("expected error for empty root")
		}
	})

	t.Run("with file size", func(t *testing.T) {
		s, err := New(Config{Root: t.TempDir(), MaxFileSize: "10MB"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.MaxFileSize() != 10*1024*1024 {
			t.Errorf("expected 10MB = %d bytes, got %d", 10*1024*1024, s.MaxFileSize())
		}
		if !filepath.IsAbs(s.Root()) {
			t.Errorf("expected absolute root, got %q", s.Root())
		}
	})

	t.Run("invalid file size", func(t *testing.T) {
		if _, err := New(Config{Root: t.TempDir(), MaxFileSize: "notasize"}); err == nil {
			t.Fatal("expected error for invalid file size")
		}
	})
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	s, err := New(Config{Root: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain file", "show-mlag.json", false},
		{"nested file", "lf01/show-mlag.json", false},
		{"cleaned inside", "lf01/../show-mlag.json", false},
		{"parent escape", "../secret.json", true},
		{"deep escape", "lf01/../../secret.json", true},
		{"absolute", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Resolve(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrOutsideRoot) {
					t.Errorf("expected ErrOutsideRoot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(p, s.Root()) {
				t.Errorf("resolved %q outside root %q", p, s.Root())
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "small.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "big.json"), []byte(strings.Repeat("x", 2048)), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(Config{Root: root, MaxFileSize: "1KB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := s.ReadFile("small.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("data = %q", data)
	}

	if _, err := s.ReadFile("big.json"); err == nil {
		t.Error("expected size limit error")
	}
	if _, err := s.ReadFile("absent.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	if _, err := s.ReadFile("."); err == nil {
		t.Error("expected error reading a directory")
	}
}

func TestCheckFileSize(t *testing.T) {
	s, err := New(Config{Root: t.TempDir(), MaxFileSize: "1KB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		size    int64
		wantErr bool
	}{
		{0, false},
		{512, false},
		{1024, false},
		{1025, true},
	}
	for _, tt := range tests {
		if err := s.CheckFileSize(tt.size); (err != nil) != tt.wantErr {
			t.Errorf("CheckFileSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
	}

	unlimited, _ := New(Config{Root: t.TempDir()})
	if err := unlimited.CheckFileSize(1 << 40); err != nil {
		t.Errorf("expected no limit, got %v", err)
	}
}

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"100B", 100, false},
		{"1KB", 1024, false},
		{"1.5KB", 1536, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{" 2 mb ", 2 * 1024 * 1024, false},
		{"abc", 0, true},
		{"-1", 0, true},
		{"xKB", 0, true},
	}

	for _, tt := range tests {
		got, err := parseFileSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFileSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFileSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
