package coordinator

import (
	"context"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
	"github.com/hpungsan/tabprofile/internal/tabs"
)

// capture returns the window's open tabs as saved tab records.
func (c *Coordinator) capture(ctx context.Context) ([]profile.Tab, error) {
	open, err := c.window.Query(ctx)
	if err != nil {
		return nil, errors.NewInfrastructure("tabs query", err)
	}
	out := make([]profile.Tab, 0, len(open))
	for _, t := range open {
		out = append(out, profile.Tab{URL: t.URL, Pinned: t.Pinned})
	}
	return out, nil
}

// replaceTabs makes the window hold exactly target. The first open tab is
// reused as an anchor so the window never becomes empty.
func (c *Coordinator) replaceTabs(ctx context.Context, target []profile.Tab) error {
	open, err := c.window.Query(ctx)
	if err != nil {
		return errors.NewInfrastructure("tabs query", err)
	}

	if len(open) == 0 {
		return c.createAll(ctx, target)
	}

	anchor := open[0]
	first := tabs.Update{URL: c.newTabURL, Pinned: tabs.Bool(false)}
	rest := target
	if len(target) > 0 {
		first = tabs.Update{URL: target[0].URL, Pinned: tabs.Bool(target[0].Pinned)}
		rest = target[1:]
	}
	if err := c.window.Update(ctx, anchor.ID, first); err != nil {
		return errors.NewInfrastructure("tabs update", err)
	}

	if len(open) > 1 {
		ids := make([]string, 0, len(open)-1)
		for _, t := range open[1:] {
			ids = append(ids, t.ID)
		}
		if err := c.window.Remove(ctx, ids); err != nil {
			return errors.NewInfrastructure("tabs remove", err)
		}
	}

	return c.createAll(ctx, rest)
}

func (c *Coordinator) createAll(ctx context.Context, target []profile.Tab) error {
	for _, t := range target {
		if _, err := c.window.Create(ctx, t.URL, t.Pinned); err != nil {
			return errors.NewInfrastructure("tabs create", err)
		}
	}
	return nil
}
