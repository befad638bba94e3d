package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// homeEnv overrides the data directory (default ~/.tabprofile).
const homeEnv = "TABPROFILE_HOME"

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	baseDir, err := resolveBaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}

	args := os.Args
	// No args + piped stdin → MCP server
	if len(args) < 2 {
		args = append(args, "mcp")
	}

	app := newCLIApp(baseDir, cfg)
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func resolveBaseDir() (string, error) {
	if dir := os.Getenv(homeEnv); dir != "" {
		return filepath.Abs(dir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tabprofile"), nil
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printBanner() {
	fmt.Println(`
  _        _                      __ _ _
 | |_ __ _| |__  _ __  _ __ ___  / _(_) | ___
 | __/ _' | '_ \| '_ \| '__/ _ \| |_| | |/ _ \
 | || (_| | |_) | |_) | | | (_) |  _| | |  __/
  \__\__,_|_.__/| .__/|_|  \___/|_| |_|_|\___|
                |_|

  Named sets of browser tabs, switched in one window

  Usage: tabprofile serve            run the HTTP control API
         tabprofile <command> [...]  talk to a running server
         tabprofile --help

  MCP server mode requires piped input.`)
}
