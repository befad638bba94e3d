// Package coordinator owns the tab-profile state machine. It reconciles the
// in-memory session with durable storage at the start of every command and
// drives the browser window when a profile is activated or deactivated.
package coordinator

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"sync"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
	"github.com/hpungsan/tabprofile/internal/tabs"
)

// ProfilesKey is the storage key holding the whole profile set.
const ProfilesKey = "profiles"

// Storage is the durable key-value store the coordinator persists to.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Event is a process lifecycle event.
type Event string

const (
	EventStartup   Event = "startup"
	EventInstalled Event = "installed"
)

// session is the per-process state that is never persisted.
type session struct {
	current     string
	original    []profile.Tab
	hasOriginal bool
	sessionTabs map[string][]profile.Tab
}

func (s session) clone() session {
	out := s
	out.original = profile.CloneTabs(s.original)
	out.sessionTabs = maps.Clone(s.sessionTabs)
	if out.sessionTabs == nil {
		out.sessionTabs = map[string][]profile.Tab{}
	}
	return out
}

// Coordinator serializes commands against the profile store and the window.
type Coordinator struct {
	mu         sync.Mutex
	store      Storage
	window     tabs.Window
	newTabURL  string
	exportsDir string
	sess       session
}

// New returns a coordinator in the baseline state. Call HandleLifecycle
// before serving commands so stale active flags are cleared.
func New(store Storage, window tabs.Window, cfg *config.Config, baseDir string) *Coordinator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Coordinator{
		store:      store,
		window:     window,
		newTabURL:  cfg.Browser.NewTabURL,
		exportsDir: filepath.Join(baseDir, "exports"),
		sess:       session{sessionTabs: map[string][]profile.Tab{}},
	}
}

// snapshot is the reconciled view a command acts on.
type snapshot struct {
	profiles profile.Set
	current  string
}

// exclusive runs fn while holding the command lock. Once admitted a command
// runs to completion, so fn sees a context that is never cancelled.
func (c *Coordinator) exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(context.WithoutCancel(ctx))
}

// load reads the persisted profile set.
func (c *Coordinator) load(ctx context.Context) (profile.Set, error) {
	data, _, err := c.store.Get(ctx, ProfilesKey)
	if err != nil {
		return nil, errors.NewInfrastructure("storage get", err)
	}
	set, err := profile.Decode(data)
	if err != nil {
		return nil, errors.NewInfrastructure("storage decode", err)
	}
	return set, nil
}

// reconcile reloads profiles and derives the current profile from the
// persisted active flags. Session-only fields are left as they are.
func (c *Coordinator) reconcile(ctx context.Context) (*snapshot, error) {
	set, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	current := set.Active()
	if current != c.sess.current {
		pslog.Ctx(ctx).Debug("reconcile.current_changed", "memory", c.sess.current, "storage", current)
	}
	c.sess.current = current
	return &snapshot{profiles: set, current: current}, nil
}

// persist writes the profile set back to storage.
func (c *Coordinator) persist(ctx context.Context, set profile.Set) error {
	data, err := profile.Encode(set)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("encode profiles: %w", err))
	}
	if err := c.store.Set(ctx, ProfilesKey, data); err != nil {
		return errors.NewInfrastructure("storage set", err)
	}
	return nil
}

// HandleLifecycle reacts to a process lifecycle event. Startup and install
// both reset the session and clear every persisted active flag.
func (c *Coordinator) HandleLifecycle(ctx context.Context, event Event) error {
	switch event {
	case EventStartup, EventInstalled:
		return c.Reset(ctx)
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("unknown lifecycle event: %q", event))
	}
}

// Reset clears the session and forces every profile inactive in storage.
// The session is cleared even when storage fails.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		c.sess = session{sessionTabs: map[string][]profile.Tab{}}

		set, err := c.load(ctx)
		if err != nil {
			pslog.Ctx(ctx).Warn("startup.reset.failed", "err", err)
			return err
		}
		stale := set.ActiveCount()
		set.SetActive("")
		if err := c.persist(ctx, set); err != nil {
			pslog.Ctx(ctx).Warn("startup.reset.failed", "err", err)
			return err
		}
		pslog.Ctx(ctx).Info("startup.reset", "profiles", len(set), "cleared_active", stale)
		return nil
	})
}
