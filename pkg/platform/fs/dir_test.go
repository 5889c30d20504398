package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgast/nrfu/pkg/platform"
)

func writeCapture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDirFetcherFetch(t *testing.T) {
	root := t.TempDir()
	writeCapture(t, root, "show-mlag.json", `{"state": "active"}`)

	f, err := NewDirFetcher(root, "")
	require.NoError(t, err)

	data, err := f.Fetch(context.Background(), "show mlag")
	require.NoError(t, err)
	assert.JSONEq(t, `{"state": "active"}`, string(data))

	_, err = f.Fetch(context.Background(), "show inventory")
	assert.ErrorIs(t, err, platform.ErrNoOutput)
}

func TestDirFetcherDevicePreferred(t *testing.T) {
	root := t.TempDir()
	writeCapture(t, root, "show-mlag.json", `{"state": "shared"}`)
	writeCapture(t, filepath.Join(root, "lf01"), "show-mlag.json", `{"state": "device"}`)
	writeCapture(t, root, "show-inventory.json", `{"xcvrSlots": {}}`)

	f, err := NewDirFetcher(root, "", WithDevice("lf01"))
	require.NoError(t, err)

	data, err := f.Fetch(context.Background(), "show mlag")
	require.NoError(t, err)
	assert.Contains(t, string(data), "device")

	data, err = f.Fetch(context.Background(), "show inventory")
	require.NoError(t, err, "falls back to the shared directory")
	assert.Contains(t, string(data), "xcvrSlots")

	cmds, err := f.Commands()
	require.NoError(t, err)
	assert.Equal(t, []string{"show inventory", "show mlag"}, cmds)
}

func TestDirFetcherSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeCapture(t, root, "show-interfaces.json", `{"interfaces": {"Ethernet1": {"interfaceStatus": "connected"}}}`)

	f, err := NewDirFetcher(root, "16B")
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "show interfaces")
	require.Error(t, err)
	assert.False(t, errors.Is(err, platform.ErrNoOutput))
}

func TestDirFetcherDeviceEscape(t *testing.T) {
	root := t.TempDir()
	f, err := NewDirFetcher(root, "", WithDevice("../other"))
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "show mlag")
	require.Error(t, err)
	assert.False(t, errors.Is(err, platform.ErrNoOutput))
}

func TestNewDirFetcherMissingDir(t *testing.T) {
	_, err := NewDirFetcher(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, err)
}

func TestDirFetcherCanceled(t *testing.T) {
	f, err := NewDirFetcher(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "show mlag")
	assert.ErrorIs(t, err, context.Canceled)
}
