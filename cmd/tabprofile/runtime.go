package main

import (
	"context"
	"database/sql"
	"fmt"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/coordinator"
	"github.com/hpungsan/tabprofile/internal/db"
	"github.com/hpungsan/tabprofile/internal/tabs"
	"github.com/hpungsan/tabprofile/internal/tabs/cdp"
)

// runtime is everything a serving process holds open.
type runtime struct {
	db          *sql.DB
	coord       *coordinator.Coordinator
	closeWindow func()
}

// openRuntime opens the database and the browser window, builds the
// coordinator and runs the lifecycle reset.
func openRuntime(ctx context.Context, baseDir string, cfg *config.Config) (*runtime, error) {
	logger := pslog.Ctx(ctx)

	fresh := !db.Exists(baseDir)
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	window, closeWindow, err := openWindow(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	rt := &runtime{
		db:          database,
		coord:       coordinator.New(db.NewKV(database), window, cfg, baseDir),
		closeWindow: closeWindow,
	}

	event := coordinator.EventStartup
	if fresh {
		event = coordinator.EventInstalled
	}
	logger.Info("tabprofile.start", "base_dir", baseDir, "driver", cfg.Browser.Driver, "event", string(event))
	if err := rt.coord.HandleLifecycle(ctx, event); err != nil {
		rt.Close()
		return nil, fmt.Errorf("lifecycle reset: %w", err)
	}
	return rt, nil
}

func openWindow(ctx context.Context, cfg *config.Config) (tabs.Window, func(), error) {
	switch cfg.Browser.Driver {
	case config.DriverCDP:
		w, err := cdp.New(ctx, cfg.Browser)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open browser: %w", err)
		}
		return w, w.Close, nil
	default:
		return tabs.NewMemory(cfg.Browser.NewTabURL), func() {}, nil
	}
}

// Close releases the window and the database.
func (r *runtime) Close() {
	r.closeWindow()
	r.db.Close()
}
