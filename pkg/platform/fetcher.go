package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoOutput is returned by a Fetcher that has no output for a command.
var ErrNoOutput = errors.New("no output for command")

// Fetcher returns the structured (JSON) output of a device show command.
type Fetcher interface {
	Fetch(ctx context.Context, command string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, command string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, command string) ([]byte, error) {
	return f(ctx, command)
}

// StaticFetcher serves outputs held in memory, keyed by command.
type StaticFetcher map[string][]byte

func (s StaticFetcher) Fetch(ctx context.Context, command string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := s[command]
	if !ok {
		return nil, fmt.Errorf("%s: %w", command, ErrNoOutput)
	}
	return data, nil
}

// CommandFile returns the capture file name for a show command:
// "show lldp neighbors" -> "show-lldp-neighbors.json".
func CommandFile(command string) string {
	return strings.Join(strings.Fields(strings.ToLower(command)), "-") + ".json"
}

// FileCommand is the inverse of CommandFile. The second result is false for
// names that are not capture files.
func FileCommand(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok || !strings.HasPrefix(base, "show-") {
		return "", false
	}
	return strings.ReplaceAll(base, "-", " "), true
}
