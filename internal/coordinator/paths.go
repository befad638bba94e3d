package coordinator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/tabprofile/internal/errors"
)

// validatePath checks an import or export path: it must be a .jsonl file,
// must not traverse upward and must not be a symlink. Reads also require
// the file to exist. The cleaned absolute path is returned.
func validatePath(path string, read bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if slices.Contains(strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }), "..") {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return "", errors.NewInvalidRequest("path must have .jsonl extension")
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		return "", errors.NewInvalidRequest("path must not be a symlink")
	case err == nil && info.IsDir():
		return "", errors.NewInvalidRequest("path is a directory")
	case err != nil && os.IsNotExist(err) && read:
		return "", errors.NewInvalidRequest("file not found: " + path)
	}
	return abs, nil
}
