package coordinator

import (
	"context"

	"github.com/hpungsan/tabprofile/internal/profile"
)

// ProfileView is a profile as reported by State.
type ProfileView struct {
	Name   string        `json:"name"`
	ID     string        `json:"id,omitempty"`
	Active bool          `json:"active"`
	Tabs   []profile.Tab `json:"tabs"`
}

// NewProfileView converts a profile for reporting.
func NewProfileView(p *profile.Profile) *ProfileView {
	return &ProfileView{Name: p.Name, ID: p.ID, Active: p.Active, Tabs: profile.CloneTabs(p.Tabs)}
}

// StateOutput lists every profile in creation order and the current profile.
// CurrentProfile is nil at the baseline.
type StateOutput struct {
	Profiles       []ProfileView `json:"profiles"`
	CurrentProfile *string       `json:"currentProfile"`
}

// Current returns the current profile name, or "" at the baseline.
func (s *StateOutput) Current() string {
	if s == nil || s.CurrentProfile == nil {
		return ""
	}
	return *s.CurrentProfile
}

// ProfileList converts the views back to profiles, for rendering.
func (s *StateOutput) ProfileList() []*profile.Profile {
	out := make([]*profile.Profile, 0, len(s.Profiles))
	for _, v := range s.Profiles {
		out = append(out, &profile.Profile{Name: v.Name, ID: v.ID, Tabs: v.Tabs, Active: v.Active})
	}
	return out
}

// State reports all profiles and the current profile. It does not mutate.
func (c *Coordinator) State(ctx context.Context) (*StateOutput, error) {
	var out *StateOutput
	err := c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}
		out = &StateOutput{Profiles: make([]ProfileView, 0, len(st.profiles))}
		for _, p := range st.profiles.Ordered() {
			out.Profiles = append(out.Profiles, *NewProfileView(p))
		}
		if st.current != "" {
			current := st.current
			out.CurrentProfile = &current
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
