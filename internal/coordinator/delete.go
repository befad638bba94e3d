package coordinator

import (
	"context"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Delete removes a profile. Deleting the current profile returns the session
// to the baseline without touching the window.
func (c *Coordinator) Delete(ctx context.Context, name string) error {
	return c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		name = profile.NormalizeName(name)
		if _, ok := st.profiles[name]; !ok {
			return errors.NewNotFound(name)
		}

		delete(st.profiles, name)
		next := c.sess.clone()
		delete(next.sessionTabs, name)
		wasCurrent := name == st.current
		if wasCurrent {
			next.current = ""
			next.original = nil
			next.hasOriginal = false
		}

		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		c.sess = next

		pslog.Ctx(ctx).Info("profile.delete", "name", name, "was_current", wasCurrent)
		return nil
	})
}
