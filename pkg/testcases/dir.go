package testcases

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cgast/nrfu/pkg/nrfu"
)

var docExtensions = []string{".json", ".yaml", ".yml"}

// DirStore keeps one human-editable document per domain in a directory,
// named after the domain: <dir>/test-cabling.json. YAML documents are read
// but Save always writes JSON.
type DirStore struct {
	dir  string
	vars map[string]string
}

// NewDirStore creates a store over dir, creating it if needed. vars are
// interpolated into every document read.
func NewDirStore(dir string, vars map[string]string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create test case dir: %w", err)
	}
	return &DirStore{dir: dir, vars: vars}, nil
}

// Dir returns the store's directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) Load(domain string) ([]nrfu.TestCase, error) {
	for _, ext := range docExtensions {
		path := filepath.Join(s.dir, domain+ext)
		cases, err := LoadFile(path, domain, s.vars)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.WithField("file", path).WithField("count", len(cases)).Debug("Loaded test cases")
		return cases, nil
	}
	return nil, fmt.Errorf("%s: %w", domain, ErrNotFound)
}

func (s *DirStore) Save(domain string, cases []nrfu.TestCase) error {
	data, err := Encode(cases)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, domain+".json")
	tmp, err := os.CreateTemp(s.dir, "."+domain+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", domain, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", domain, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", domain, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", domain, err)
	}

	// Keep a single document per domain.
	for _, ext := range docExtensions[1:] {
		os.Remove(filepath.Join(s.dir, domain+ext))
	}
	logger.WithField("file", path).WithField("count", len(cases)).Info("Saved test cases")
	return nil
}

func (s *DirStore) Domains() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list test case dir: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		if !strings.HasPrefix(stem, "test-") {
			continue
		}
		for _, known := range docExtensions {
			if strings.EqualFold(ext, known) {
				seen[stem] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func (s *DirStore) Close() error { return nil }
