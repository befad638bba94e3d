package coordinator

import (
	"context"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Create adds an empty, inactive profile.
func (c *Coordinator) Create(ctx context.Context, name string) (*profile.Profile, error) {
	var created *profile.Profile
	err := c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		name = profile.NormalizeName(name)
		if name == "" {
			return errors.NewNameRequired()
		}
		if _, exists := st.profiles[name]; exists {
			return errors.NewNameAlreadyExists(name)
		}

		p := &profile.Profile{Name: name, ID: profile.NewID(), Tabs: []profile.Tab{}}
		st.profiles[name] = p
		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		created = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
