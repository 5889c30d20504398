package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrOutsideRoot is returned for any path that resolves outside the root.
var ErrOutsideRoot = errors.New("path escapes capture root")

// Sandbox confines reads of captured device output to a single root
// directory and caps the size of any file read from it.
type Sandbox struct {
	root        string
	maxFileSize int64 // bytes, 0 means unlimited
}

// Config holds the sandbox configuration.
type Config struct {
	Root        string
	MaxFileSize string // e.g. "10MB", "500KB"
}

// New creates a Sandbox rooted at cfg.Root, resolved to an absolute path.
func New(cfg Config) (*Sandbox, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("sandbox: root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("sandbox: resolve root %q: %w", cfg.Root, err)
	}
	s := &Sandbox{root: root}

	if cfg.MaxFileSize != "" {
		size, err := parseFileSize(cfg.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("sandbox: parse max_file_size %q: %w", cfg.MaxFileSize, err)
		}
		s.maxFileSize = size
	}
	return s, nil
}

// Root returns the absolute capture root.
func (s *Sandbox) Root() string { return s.root }

// MaxFileSize returns the configured maximum file size in bytes, or 0.
func (s *Sandbox) MaxFileSize() int64 { return s.maxFileSize }

// Resolve joins name onto the root and returns the absolute path. Names
// that climb out of the root are rejected.
func (s *Sandbox) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("sandbox: %q: %w", name, ErrOutsideRoot)
	}
	p := filepath.Join(s.root, name)
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("sandbox: %q: %w", name, ErrOutsideRoot)
	}
	return p, nil
}

// CheckFileSize returns an error if size exceeds the configured maximum.
func (s *Sandbox) CheckFileSize(size int64) error {
	if s.maxFileSize <= 0 || size <= s.maxFileSize {
		return nil
	}
	return fmt.Errorf("sandbox: file size %d bytes exceeds maximum %d bytes (%s)",
		size, s.maxFileSize, formatFileSize(s.maxFileSize))
}

// ReadFile reads a file under the root, enforcing the size limit both on
// the reported size and on the bytes actually read.
func (s *Sandbox) ReadFile(name string) ([]byte, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("sandbox: %q is a directory", name)
	}
	if err := s.CheckFileSize(info.Size()); err != nil {
		return nil, err
	}

	var r io.Reader = f
	if s.maxFileSize > 0 {
		r = io.LimitReader(f, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := s.CheckFileSize(int64(len(data))); err != nil {
		return nil, err
	}
	return data, nil
}

// parseFileSize parses a human-readable size such as "10MB" into bytes.
// Supported suffixes: B, KB, MB, GB (case-insensitive). No suffix means bytes.
func parseFileSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		n, err := strconv.ParseFloat(num, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid number %q", num)
		}
		return int64(n * float64(u.multiplier)), nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid file size %q", s)
	}
	return n, nil
}

func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1fGB", float64(bytes)/(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(bytes)/(1<<10))
	}
	return fmt.Sprintf("%dB", bytes)
}
