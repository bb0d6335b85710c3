package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/testutil"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T) string {
	t.Helper()
	img := testutil.NewProDOSVolume("CMDVOL")
	img.SetFileCount(2, 1)
	img.WriteEntry(2, 0, testutil.ProDOSEntry{
		Storage: types.StorageSeedling, Name: "README", FileType: types.FileTypeText,
		Key: 10, BlocksUsed: 1, EOF: 2, Access: 0xC3,
		Modified: testutil.ProDOSDate(1991, 2, 3, 4, 5),
	})
	copy(img.Block(10), "HI")

	path := filepath.Join(t.TempDir(), "cmdvol.po")
	require.NoError(t, os.WriteFile(path, img.Data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, args...)
	return out, err
}

func runWithStderr(t *testing.T, args ...string) (string, *bytes.Buffer, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		quiet, verbose = false, false
	})
	err := rootCmd.Execute()
	return out.String(), &errOut, err
}

func TestListCommand(t *testing.T) {
	image := writeImage(t)

	out, err := run(t, "list", image, "-o", "json")
	require.NoError(t, err)

	var cat map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cat))
	assert.Equal(t, "CMDVOL", cat["volume"])
	entries, ok := cat["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "/CMDVOL/README", entries[0].(map[string]any)["path"])

	out, err = run(t, "list", image, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "/CMDVOL/README")
	assert.Contains(t, out, "TXT")
	assert.Contains(t, out, "1 files")
}

func TestInfoCommand(t *testing.T) {
	out, err := run(t, "info", writeImage(t), "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "CMDVOL")
	assert.Contains(t, out, "ProDOS")
}

func TestExtractCommand(t *testing.T) {
	dest := t.TempDir()
	_, err := run(t, "extract", writeImage(t), "--dest", dest, "-o", "table")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "CMDVOL", "README"))
	require.NoError(t, err)
	assert.Equal(t, "HI", string(data))

	_, stderr, err := runWithStderr(t, "extract", writeImage(t), "--dest", t.TempDir(), "-v", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), `"msg"="file cache"`)
	assert.Contains(t, stderr.String(), `"misses"=1`)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exit int
	}{
		{"missing image", []string{"info", filepath.Join(t.TempDir(), "nope.po"), "-o", "table"}, app.ExitImage},
		{"missing path", []string{"list", writeImage(t), "/CMDVOL/NOPE", "-o", "table"}, app.ExitImage},
		{"bad output format", []string{"info", writeImage(t), "-o", "xml"}, app.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, app.ExitCodeFor(err))
		})
	}
}

func TestQuietOutput(t *testing.T) {
	image := writeImage(t)

	out, stderr, err := runWithStderr(t, "list", image, "-q", "-o", "table")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, stderr.String())

	out, stderr, err = runWithStderr(t, "list", image, "/CMDVOL/NOPE", "-q", "-o", "table")
	require.Error(t, err)
	assert.Empty(t, out)
	reportError(err)
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), "NOPE")
}
