// Package filex holds small filesystem helpers shared by the local store and
// the key sources.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrivateDirPerm is used for directories holding the local database and keys.
const PrivateDirPerm = 0o700

// EnsureParentDir creates the directory that will contain path, including
// missing parents. Paths without a directory part need nothing.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, PrivateDirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return nil
}
