package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "india_heatmap.html")

	require.NoError(t, Write(path, []byte("first version")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first version", string(b))

	require.NoError(t, Write(path, []byte("second")))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteRejectsEmptyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	assert.ErrorIs(t, Write(path, nil), ErrEmpty)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	assert.Error(t, Write(filepath.Join(blocker, "out.html"), []byte("payload")))
}

// failTempRenames 让"临时文件 → 目标"的改名失败 n 次（n<0 表示一直失败），其余改名照常
func failTempRenames(t *testing.T, n int) {
	t.Helper()
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(from, to string) error {
		if strings.Contains(filepath.Base(from), ".tmp.") && n != 0 {
			n--
			return errors.New("rename refused")
		}
		return os.Rename(from, to)
	}
}

func TestWriteKeepsPreviousArtifactWhenReplaceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "india_heatmap.html")
	require.NoError(t, Write(path, []byte("previous")))

	failTempRenames(t, -1)
	err := Write(path, []byte("next"))
	require.Error(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(b))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "backup restored and temp file removed")
}

func TestWriteReplacesViaBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "india_heatmap.html")
	require.NoError(t, Write(path, []byte("previous")))

	failTempRenames(t, 1)
	require.NoError(t, Write(path, []byte("next")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "next", string(b))
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
