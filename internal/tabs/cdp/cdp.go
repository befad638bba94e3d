// Package cdp drives a Chrome window over the DevTools protocol.
//
// Page targets are tabs. The protocol has no notion of pinned tabs, so the
// pinned flag is kept in an overlay owned by the driver, and tabs are
// reported in the order the driver first saw them. The tab the driver uses
// for its own browser connection is never reported.
package cdp

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/tabs"
)

// navigateTimeout bounds a single anchor navigation.
const navigateTimeout = 30 * time.Second

type tabCtx struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Window is a tabs.Window backed by a Chrome instance.
type Window struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	controlID     target.ID

	mu       sync.Mutex
	seq      int
	seen     map[target.ID]int
	pinned   map[target.ID]bool
	attached map[target.ID]tabCtx
}

var _ tabs.Window = (*Window)(nil)

// New connects to the browser described by cfg. A non-empty CDPURL attaches
// to a running Chrome; otherwise a Chrome process is launched.
func New(ctx context.Context, cfg config.BrowserConfig) (*Window, error) {
	logger := pslog.Ctx(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.CDPURL != "" {
		logger.Info("browser.connect", "cdp_url", cfg.CDPURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), cfg.CDPURL)
	} else {
		logger.Info("browser.launch", "exec_path", cfg.ExecPath, "headless", cfg.Headless)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.WithoutCancel(ctx), execOptions(cfg)...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	w := newWindow()
	w.allocCancel = allocCancel
	w.browserCtx = browserCtx
	w.browserCancel = browserCancel
	w.controlID = chromedp.FromContext(browserCtx).Target.TargetID
	return w, nil
}

func newWindow() *Window {
	return &Window{
		seen:     map[target.ID]int{},
		pinned:   map[target.ID]bool{},
		attached: map[target.ID]tabCtx{},
	}
}

func execOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-session-crashed-bubble", true),
		chromedp.Flag("hide-crash-restore-bubble", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	return opts
}

// Close releases the browser connection. Tabs opened through the driver are
// left open; a launched browser exits with its allocator.
func (w *Window) Close() {
	w.browserCancel()
	w.allocCancel()
}

func (w *Window) browserExec(ctx context.Context) context.Context {
	return cdp.WithExecutor(ctx, chromedp.FromContext(w.browserCtx).Browser)
}

// Query returns the page targets of the browser in first-seen order.
func (w *Window) Query(ctx context.Context) ([]tabs.Tab, error) {
	infos, err := chromedp.Targets(w.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.track(infos), nil
}

// track folds a target listing into the driver state and returns the
// visible tabs. Callers hold w.mu.
func (w *Window) track(infos []*target.Info) []tabs.Tab {
	live := map[target.ID]bool{}
	var pages []*target.Info
	for _, info := range infos {
		if info.Type != "page" || info.TargetID == w.controlID {
			continue
		}
		live[info.TargetID] = true
		if _, ok := w.seen[info.TargetID]; !ok {
			w.seq++
			w.seen[info.TargetID] = w.seq
		}
		pages = append(pages, info)
	}

	for id := range w.seen {
		if !live[id] {
			w.forget(id)
		}
	}

	slices.SortFunc(pages, func(a, b *target.Info) int {
		return w.seen[a.TargetID] - w.seen[b.TargetID]
	})

	out := make([]tabs.Tab, 0, len(pages))
	for _, p := range pages {
		out = append(out, tabs.Tab{ID: string(p.TargetID), URL: p.URL, Pinned: w.pinned[p.TargetID]})
	}
	return out
}

// forget drops state for a target that no longer exists. Callers hold w.mu.
func (w *Window) forget(id target.ID) {
	delete(w.seen, id)
	delete(w.pinned, id)
	if tc, ok := w.attached[id]; ok {
		delete(w.attached, id)
		tc.cancel()
	}
}

// Remove closes the given targets.
func (w *Window) Remove(ctx context.Context, ids []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, raw := range ids {
		id := target.ID(raw)
		if tc, ok := w.attached[id]; ok {
			// Cancelling an attached context closes its target.
			delete(w.attached, id)
			tc.cancel()
		} else if err := target.CloseTarget(id).Do(w.browserExec(ctx)); err != nil {
			return fmt.Errorf("close target %s: %w", raw, err)
		}
		delete(w.seen, id)
		delete(w.pinned, id)
	}
	return nil
}

// Update navigates a target and records its pinned flag.
func (w *Window) Update(ctx context.Context, id string, u tabs.Update) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tid := target.ID(id)
	if u.URL != "" {
		tc := w.attach(tid)
		runCtx, cancel := context.WithTimeout(tc.ctx, navigateTimeout)
		defer cancel()
		if err := chromedp.Run(runCtx, chromedp.Navigate(u.URL)); err != nil {
			return fmt.Errorf("navigate target %s: %w", id, err)
		}
	}
	if u.Pinned != nil {
		w.pinned[tid] = *u.Pinned
	}
	return nil
}

// attach returns the cached context for a target, creating one on first use.
// Tab contexts hang off an uncancelable parent so that closing the driver
// does not close the tabs. Callers hold w.mu.
func (w *Window) attach(id target.ID) tabCtx {
	if tc, ok := w.attached[id]; ok {
		return tc
	}
	ctx, cancel := chromedp.NewContext(context.WithoutCancel(w.browserCtx), chromedp.WithTargetID(id))
	tc := tabCtx{ctx: ctx, cancel: cancel}
	w.attached[id] = tc
	return tc
}

// Create opens a new target at url.
func (w *Window) Create(ctx context.Context, url string, pinned bool) (tabs.Tab, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, err := target.CreateTarget(url).Do(w.browserExec(ctx))
	if err != nil {
		return tabs.Tab{}, fmt.Errorf("create target: %w", err)
	}
	w.seq++
	w.seen[id] = w.seq
	if pinned {
		w.pinned[id] = true
	}
	return tabs.Tab{ID: string(id), URL: url, Pinned: pinned}, nil
}
