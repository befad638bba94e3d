//go:build windows

package coordinator

import (
	"os"

	"github.com/hpungsan/tabprofile/internal/errors"
)

// openNoFollow opens path. Windows has no O_NOFOLLOW; validatePath has
// already rejected symlinks.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInvalidRequest("file not found: " + path)
		}
		return nil, err
	}
	return f, nil
}
