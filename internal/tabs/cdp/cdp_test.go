package cdp

import (
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tabprofile/internal/config"
)

func page(id, url string) *target.Info {
	return &target.Info{TargetID: target.ID(id), Type: "page", URL: url}
}

func TestTrack_FirstSeenOrder(t *testing.T) {
	w := newWindow()

	got := w.track([]*target.Info{page("b", "https://b.com"), page("a", "https://a.com")})
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "a", got[1].ID)

	// The browser may list targets in a different order later
	got = w.track([]*target.Info{page("c", "https://c.com"), page("a", "https://a.com"), page("b", "https://b.com")})
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	require.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestTrack_SkipsControlAndNonPages(t *testing.T) {
	w := newWindow()
	w.controlID = "control"

	got := w.track([]*target.Info{
		page("control", "about:blank"),
		{TargetID: "sw", Type: "service_worker", URL: "https://a.com/sw.js"},
		page("a", "https://a.com"),
	})
	require.Len(t, got, 1)
	require.Equal(t, "https://a.com", got[0].URL)
}

func TestTrack_PinnedOverlay(t *testing.T) {
	w := newWindow()
	w.pinned["a"] = true

	got := w.track([]*target.Info{page("a", "https://a.com"), page("b", "https://b.com")})
	require.True(t, got[0].Pinned)
	require.False(t, got[1].Pinned)
}

func TestTrack_ForgetsClosedTargets(t *testing.T) {
	w := newWindow()
	w.track([]*target.Info{page("a", "https://a.com"), page("b", "https://b.com")})
	w.pinned["a"] = true

	cancelled := false
	w.attached["a"] = tabCtx{cancel: func() { cancelled = true }}

	got := w.track([]*target.Info{page("b", "https://b.com")})
	require.Len(t, got, 1)
	require.NotContains(t, w.seen, target.ID("a"))
	require.NotContains(t, w.pinned, target.ID("a"))
	require.NotContains(t, w.attached, target.ID("a"))
	require.True(t, cancelled)
}

func TestExecOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	headless := execOptions(config.BrowserConfig{Headless: true})
	headed := execOptions(config.BrowserConfig{Headless: false, ExecPath: "/usr/bin/chromium"})

	require.Greater(t, len(headless), base)
	require.Equal(t, len(headless)+2, len(headed))
}
