package profile

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "work", want: "work"},
		{name: "trim whitespace", input: "  work \t", want: "work"},
		{name: "internal whitespace kept", input: "deep  work", want: "deep  work"},
		{name: "case kept", input: "Work", want: "Work"},
		{name: "blank", input: "   ", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewID_Monotonic(t *testing.T) {
	prev := NewID()
	if len(prev) != 26 {
		t.Errorf("len(ID) = %d, want 26", len(prev))
	}
	for i := 0; i < 1000; i++ {
		next := NewID()
		if next <= prev {
			t.Fatalf("NewID() call %d = %s, not after %s", i, next, prev)
		}
		prev = next
	}
}

func TestDecode_Empty(t *testing.T) {
	set, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if set == nil || len(set) != 0 {
		t.Errorf("Decode(nil) = %v, want empty non-nil set", set)
	}
}

func TestDecode_FillsNamesAndTabs(t *testing.T) {
	data := []byte(`{
		"work": {"id": "01B", "tabs": [{"url": "https://a.com", "pinned": false}, {"url": "https://b.com", "pinned": true}], "active": true},
		"home": {"active": false},
		"legacy": null
	}`)

	set, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("len(set) = %d, want 3", len(set))
	}
	work := set["work"]
	if work.Name != "work" || work.ID != "01B" || !work.Active {
		t.Errorf("work = %+v", work)
	}
	if len(work.Tabs) != 2 || !work.Tabs[1].Pinned {
		t.Errorf("work.Tabs = %+v", work.Tabs)
	}
	if set["home"].Tabs == nil {
		t.Error("missing tabs should decode as an empty slice")
	}
	if set["legacy"] == nil || set["legacy"].Name != "legacy" {
		t.Errorf("null entry should decode as an empty profile, got %+v", set["legacy"])
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("Decode() expected error for non-object input")
	}
}

func TestEncode_OmitsName(t *testing.T) {
	set := Set{"work": {Name: "work", ID: "01A", Tabs: []Tab{{URL: "https://a.com"}}}}

	data, err := Encode(set)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := raw["work"]["name"]; ok {
		t.Error("persisted value should not repeat the name")
	}
	if raw["work"]["active"] != false {
		t.Errorf("active = %v, want false", raw["work"]["active"])
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded["work"].Tabs[0].URL != "https://a.com" {
		t.Errorf("round trip lost tabs: %+v", decoded["work"])
	}
}

func TestSet_ActiveHelpers(t *testing.T) {
	set := Set{
		"a": {Name: "a", ID: "01A"},
		"b": {Name: "b", ID: "01B"},
		"c": {Name: "c", ID: "01C"},
	}

	if got := set.Active(); got != "" {
		t.Errorf("Active() = %q, want empty", got)
	}

	set.SetActive("b")
	if got := set.Active(); got != "b" {
		t.Errorf("Active() = %q, want b", got)
	}
	if n := set.ActiveCount(); n != 1 {
		t.Errorf("ActiveCount() = %d, want 1", n)
	}

	set.SetActive("")
	if n := set.ActiveCount(); n != 0 {
		t.Errorf("ActiveCount() after clear = %d, want 0", n)
	}
}

func TestSet_ActivePrefersCreationOrder(t *testing.T) {
	set := Set{
		"late":  {Name: "late", ID: "01Z", Active: true},
		"early": {Name: "early", ID: "01A", Active: true},
	}
	if got := set.Active(); got != "early" {
		t.Errorf("Active() = %q, want early", got)
	}
}

func TestSet_Ordered(t *testing.T) {
	set := Set{
		"zeta":   {Name: "zeta", ID: "01A"},
		"alpha":  {Name: "alpha", ID: "01C"},
		"mid":    {Name: "mid", ID: "01B"},
		"legacy": {Name: "legacy"},
	}

	var names []string
	for _, p := range set.Ordered() {
		names = append(names, p.Name)
	}
	want := "legacy,zeta,mid,alpha"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Ordered() = %s, want %s", got, want)
	}
}

func TestSet_CloneIsDeep(t *testing.T) {
	set := Set{"work": {Name: "work", Tabs: []Tab{{URL: "https://a.com"}}}}
	clone := set.Clone()

	clone["work"].Tabs[0].URL = "https://changed.com"
	clone["work"].Active = true
	delete(clone, "work")

	if set["work"] == nil {
		t.Fatal("deleting from the clone removed from the original")
	}
	if set["work"].Tabs[0].URL != "https://a.com" || set["work"].Active {
		t.Errorf("original mutated through clone: %+v", set["work"])
	}
}

func TestCloneTabs(t *testing.T) {
	if got := CloneTabs(nil); got == nil || len(got) != 0 {
		t.Errorf("CloneTabs(nil) = %v, want empty non-nil", got)
	}
	in := []Tab{{URL: "https://a.com", Pinned: true}}
	out := CloneTabs(in)
	out[0].URL = "x"
	if in[0].URL != "https://a.com" {
		t.Error("CloneTabs aliases its input")
	}
}
