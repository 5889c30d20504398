package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/cgast/nrfu/internal/sandbox"
	"github.com/cgast/nrfu/pkg/platform"
)

var logger = log.WithFields(log.Fields{
	"package": "platform/fs",
})

// DirFetcher serves captured show-command outputs from a directory. Each
// command is stored as <dir>/show-<words>.json. When a device is set,
// <dir>/<device>/ is searched before <dir>.
type DirFetcher struct {
	sb     *sandbox.Sandbox
	device string
}

// Option configures a DirFetcher.
type Option func(*DirFetcher)

// WithDevice makes the fetcher prefer the device's own subdirectory.
func WithDevice(device string) Option {
	return func(f *DirFetcher) {
		f.device = device
	}
}

// NewDirFetcher creates a fetcher reading captures under dir. maxFileSize
// is a human-readable limit such as "10MB"; empty means unlimited.
func NewDirFetcher(dir, maxFileSize string, opts ...Option) (*DirFetcher, error) {
	sb, err := sandbox.New(sandbox.Config{Root: dir, MaxFileSize: maxFileSize})
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(sb.Root())
	if err != nil {
		return nil, fmt.Errorf("capture dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("capture dir %q is not a directory", dir)
	}

	f := &DirFetcher{sb: sb}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch reads the capture for command.
func (f *DirFetcher) Fetch(ctx context.Context, command string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, name := range f.candidates(command) {
		data, err := f.sb.ReadFile(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", command, err)
		}
		logger.WithField("file", name).WithField("bytes", len(data)).Debug("Loaded capture")
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", command, platform.ErrNoOutput)
}

// Commands lists the commands that have a capture, sorted.
func (f *DirFetcher) Commands() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range f.dirs() {
		p, err := f.sb.Resolve(dir)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list captures: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if cmd, ok := platform.FileCommand(e.Name()); ok {
				seen[cmd] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for cmd := range seen {
		out = append(out, cmd)
	}
	sort.Strings(out)
	return out, nil
}

func (f *DirFetcher) dirs() []string {
	if f.device == "" {
		return []string{"."}
	}
	return []string{f.device, "."}
}

func (f *DirFetcher) candidates(command string) []string {
	file := platform.CommandFile(command)
	dirs := f.dirs()
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Join(d, file)
	}
	return out
}
