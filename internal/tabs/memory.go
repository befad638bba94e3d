package tabs

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
)

// Operation names passed to Memory.Fail.
const (
	OpQuery  = "query"
	OpRemove = "remove"
	OpUpdate = "update"
	OpCreate = "create"
)

// Memory is an in-process window. It backs the default browser driver and
// tests. It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	tabs []Tab
	next int

	// Fail, when set, is consulted before every operation; a non-nil
	// return aborts the operation with that error.
	Fail func(op string) error
}

// NewMemory returns a window already holding the given URLs, unpinned.
func NewMemory(urls ...string) *Memory {
	m := &Memory{}
	for _, u := range urls {
		m.tabs = append(m.tabs, m.newTab(u, false))
	}
	return m
}

func (m *Memory) newTab(url string, pinned bool) Tab {
	m.next++
	return Tab{ID: strconv.Itoa(m.next), URL: url, Pinned: pinned}
}

func (m *Memory) fail(op string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op)
}

func (m *Memory) index(id string) int {
	return slices.IndexFunc(m.tabs, func(t Tab) bool { return t.ID == id })
}

// Query returns the open tabs in window order.
func (m *Memory) Query(ctx context.Context) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fail(OpQuery); err != nil {
		return nil, err
	}
	return slices.Clone(m.tabs), nil
}

// Remove closes the tabs with the given ids. Unknown ids fail the whole call
// and nothing is closed.
func (m *Memory) Remove(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.fail(OpRemove); err != nil {
		return err
	}
	for _, id := range ids {
		if m.index(id) < 0 {
			return fmt.Errorf("remove %s: %w", id, ErrTabNotFound)
		}
	}
	m.tabs = slices.DeleteFunc(m.tabs, func(t Tab) bool { return slices.Contains(ids, t.ID) })
	return nil
}

// Update navigates or re-pins an existing tab.
func (m *Memory) Update(ctx context.Context, id string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.fail(OpUpdate); err != nil {
		return err
	}
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrTabNotFound)
	}
	if u.URL != "" {
		m.tabs[i].URL = u.URL
	}
	if u.Pinned != nil {
		m.tabs[i].Pinned = *u.Pinned
	}
	return nil
}

// Create opens a tab at the end of the window.
func (m *Memory) Create(ctx context.Context, url string, pinned bool) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Tab{}, err
	}
	if err := m.fail(OpCreate); err != nil {
		return Tab{}, err
	}
	t := m.newTab(url, pinned)
	m.tabs = append(m.tabs, t)
	return t, nil
}
