package profile

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Tab is a saved tab: the URL to open and whether it is pinned.
type Tab struct {
	URL    string `json:"url"`
	Pinned bool   `json:"pinned"`
}

// Profile is a named, persisted set of tabs that can be activated.
type Profile struct {
	// Name is the unique key of the profile. It is not stored inside the
	// persisted value; the mapping key carries it.
	Name string `json:"-"`

	// ID is a ULID assigned at creation. It orders profiles by creation time.
	// Profiles written before IDs existed have an empty ID.
	ID string `json:"id,omitempty"`

	// Tabs is the saved tab set. Only an explicit setTabs (or import) changes it.
	Tabs []Tab `json:"tabs"`

	// Active is true iff this profile is the currently activated one.
	Active bool `json:"active"`
}

// Set maps profile names to profiles. It is the value persisted under the
// "profiles" storage key.
type Set map[string]*Profile

// NormalizeName trims surrounding whitespace from a profile name.
// An empty result means the name is missing.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NewID generates a new ULID for a profile. IDs from one process sort in
// creation order, including IDs made within the same millisecond.
func NewID() string {
	return ulid.Make().String()
}

// CloneTabs returns a copy of tabs that never aliases the input.
// A nil input yields an empty, non-nil slice.
func CloneTabs(tabs []Tab) []Tab {
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	return &Profile{
		Name:   p.Name,
		ID:     p.ID,
		Tabs:   CloneTabs(p.Tabs),
		Active: p.Active,
	}
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for name, p := range s {
		out[name] = p.Clone()
	}
	return out
}

// Active returns the name of the first active profile in creation order,
// or "" when none is active.
func (s Set) Active() string {
	for _, p := range s.Ordered() {
		if p.Active {
			return p.Name
		}
	}
	return ""
}

// ActiveCount returns how many profiles carry the active flag.
func (s Set) ActiveCount() int {
	n := 0
	for _, p := range s {
		if p.Active {
			n++
		}
	}
	return n
}

// SetActive marks name active and every other profile inactive.
// An empty name clears every flag.
func (s Set) SetActive(name string) {
	for n, p := range s {
		p.Active = n == name
	}
}

// Ordered returns the profiles sorted by creation (ID), then by name.
// Profiles without an ID sort first.
func (s Set) Ordered() []*Profile {
	out := make([]*Profile, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Profile) int {
		if c := strings.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Decode parses a persisted profile mapping. Empty input yields an empty set.
// Names are taken from the mapping keys and nil tab lists become empty.
func Decode(data []byte) (Set, error) {
	set := Set{}
	if len(data) == 0 {
		return set, nil
	}
	raw := map[string]*Profile{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for name, p := range raw {
		if p == nil {
			p = &Profile{}
		}
		p.Name = name
		if p.Tabs == nil {
			p.Tabs = []Tab{}
		}
		set[name] = p
	}
	return set, nil
}

// Encode serializes the set for persistence.
func Encode(s Set) ([]byte, error) {
	if s == nil {
		s = Set{}
	}
	return json.Marshal(map[string]*Profile(s))
}
