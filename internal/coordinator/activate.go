package coordinator

import (
	"context"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Activate switches the window to the named profile.
//
// From the baseline the open tabs are kept as the restore point. From
// another profile the open tabs become that profile's session snapshot.
// The profile opens with its own session snapshot when one exists, and
// with its saved tabs otherwise.
func (c *Coordinator) Activate(ctx context.Context, name string) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		name = profile.NormalizeName(name)
		p, ok := st.profiles[name]
		if !ok {
			return errors.NewNotFound(name)
		}
		if name == st.current {
			return errors.NewAlreadyActive(name)
		}

		captured, err := c.capture(ctx)
		if err != nil {
			return err
		}

		next := c.sess.clone()
		if st.current == "" {
			next.original = captured
			next.hasOriginal = true
		} else {
			next.sessionTabs[st.current] = captured
		}

		target, fromSession := next.sessionTabs[name]
		if fromSession {
			delete(next.sessionTabs, name)
		} else {
			target = profile.CloneTabs(p.Tabs)
		}
		next.current = name

		st.profiles.SetActive(name)
		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		c.sess = next

		logger := pslog.Ctx(ctx)
		logger.Info("profile.activate", "from", st.current, "to", name, "captured", len(captured), "opening", len(target), "from_session", fromSession)
		if err := c.replaceTabs(ctx, target); err != nil {
			logger.Warn("profile.activate.replace_failed", "to", name, "err", err)
			return err
		}
		return nil
	})
}
