//go:build !windows

package coordinator

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/tabprofile/internal/errors"
)

// openNoFollow opens path with O_NOFOLLOW so a symlink swapped in for the
// final component after validation is refused.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("path must not be a symlink")
		}
		if stderrors.Is(err, syscall.ENOENT) {
			return nil, errors.NewInvalidRequest("file not found: " + path)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}
