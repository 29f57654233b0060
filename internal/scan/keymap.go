package scan

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ObjectKey maps a local file to its remote object key. The key is the
// path of file relative to root, forward-slash separated, with prefix
// prepended when non-empty. file must live under root.
func ObjectKey(file, root, prefix string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s relative to %s: %w", file, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of %s", file, root)
	}

	key := filepath.ToSlash(rel)

	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" {
		key = prefix + "/" + key
	}

	return key, nil
}
