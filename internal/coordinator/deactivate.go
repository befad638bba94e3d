package coordinator

import (
	"context"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Deactivate returns the window to the tabs that were open before the first
// activation of the session. The open tabs become the profile's session
// snapshot; its saved tabs are not changed.
func (c *Coordinator) Deactivate(ctx context.Context) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}
		if st.current == "" {
			return errors.NewNoActiveProfile()
		}

		captured, err := c.capture(ctx)
		if err != nil {
			return err
		}

		next := c.sess.clone()
		next.sessionTabs[st.current] = captured
		restore := []profile.Tab{}
		if next.hasOriginal {
			restore = next.original
		}
		next.original = nil
		next.hasOriginal = false
		next.current = ""

		st.profiles.SetActive("")
		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		c.sess = next

		logger := pslog.Ctx(ctx)
		logger.Info("profile.deactivate", "from", st.current, "captured", len(captured), "restoring", len(restore))
		if err := c.replaceTabs(ctx, restore); err != nil {
			logger.Warn("profile.deactivate.replace_failed", "from", st.current, "err", err)
			return err
		}
		return nil
	})
}
