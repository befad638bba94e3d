// Package tabs defines the browser window surface the coordinator drives:
// querying the open tabs of the current window and mutating them.
package tabs

import (
	"context"
	"errors"
)

// ErrTabNotFound is returned when an operation names a tab id the window
// does not hold.
var ErrTabNotFound = errors.New("tab not found")

// Tab is an open tab in the current window.
type Tab struct {
	ID     string
	URL    string
	Pinned bool
}

// Update describes changes to an existing tab. A nil Pinned leaves the
// pinned state as it is.
type Update struct {
	URL    string
	Pinned *bool
}

// Window is the current browser window. Implementations must return tabs in
// window order.
type Window interface {
	Query(ctx context.Context) ([]Tab, error)
	Remove(ctx context.Context, ids []string) error
	Update(ctx context.Context, id string, u Update) error
	Create(ctx context.Context, url string, pinned bool) (Tab, error)
}

// Bool returns a pointer to b, for Update.Pinned.
func Bool(b bool) *bool {
	return &b
}
