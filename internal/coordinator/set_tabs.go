package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// SetTabs replaces a profile's saved tabs. The active flag and any live
// session snapshot of the profile are left alone.
func (c *Coordinator) SetTabs(ctx context.Context, name string, tabs []profile.Tab) (*profile.Profile, error) {
	var updated *profile.Profile
	err := c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		name = profile.NormalizeName(name)
		p, ok := st.profiles[name]
		if !ok {
			return errors.NewNotFound(name)
		}
		if err := validateTabs(tabs); err != nil {
			return err
		}

		p.Tabs = profile.CloneTabs(tabs)
		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		updated = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validateTabs(tabs []profile.Tab) error {
	for i, t := range tabs {
		if strings.TrimSpace(t.URL) == "" {
			return errors.NewInvalidRequest(fmt.Sprintf("tabs[%d]: url is required", i))
		}
	}
	return nil
}
