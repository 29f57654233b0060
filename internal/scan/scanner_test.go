package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestScanRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 3)
	writeFile(t, filepath.Join(root, "sub", "b.bin"), 5)
	writeFile(t, filepath.Join(root, "sub", "deep", "c"), 1)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	scanner := NewScanner(zap.NewNop())
	tasks, total := scanner.Scan(root, "data", true)

	require.Len(t, tasks, 3)
	assert.Equal(t, int64(9), total)

	var keys []string
	for _, task := range tasks {
		keys = append(keys, task.Key)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"data/a.txt", "data/sub/b.bin", "data/sub/deep/c"}, keys)

	for _, task := range tasks {
		assert.NotContains(t, task.Key, "\\")
		assert.FileExists(t, task.LocalPath)
	}
}

func TestScanFlat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 3)
	writeFile(t, filepath.Join(root, "sub", "b.bin"), 5)

	scanner := NewScanner(zap.NewNop())
	tasks, total := scanner.Scan(root, "", false)

	require.Len(t, tasks, 1)
	assert.Equal(t, "a.txt", tasks[0].Key)
	assert.Equal(t, int64(3), total)
}

func TestScanMissingDirectory(t *testing.T) {
	scanner := NewScanner(zap.NewNop())
	tasks, total := scanner.Scan(filepath.Join(t.TempDir(), "nope"), "", true)

	assert.Empty(t, tasks)
	assert.Zero(t, total)
}

func TestScanFileNotDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, 2)

	scanner := NewScanner(zap.NewNop())
	tasks, total := scanner.Scan(file, "", true)

	assert.Empty(t, tasks)
	assert.Zero(t, total)
}
