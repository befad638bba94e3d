package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/coordinator"
	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/mcp"
	"github.com/hpungsan/tabprofile/internal/profile"
	"github.com/hpungsan/tabprofile/internal/web"
)

// pinnedPrefix marks a --tab value as pinned, e.g. --tab pin:https://mail.example.com.
const pinnedPrefix = "pin:"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(baseDir string, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tabprofile",
		Usage:   "Named sets of browser tabs, switched in one window",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Value: cfg.HTTP.Addr(), Usage: "Address of the running server"},
		},
		Commands: []*cli.Command{
			serveCmd(baseDir, cfg),
			mcpCmd(baseDir, cfg),
			createCmd(),
			setTabsCmd(),
			activateCmd(),
			deactivateCmd(),
			stateCmd(),
			deleteCmd(),
			exportCmd(),
			importCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd runs the HTTP control API until interrupted.
func serveCmd(baseDir string, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP control API and status page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Value: cfg.HTTP.Addr(), Usage: "Listen address"},
		},
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c.Context, baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer rt.Close()
			return web.Run(c.Context, c.String("listen"), web.NewHandler(rt.coord, Version))
		},
	}
}

// mcpCmd serves the MCP tools over stdio.
func mcpCmd(baseDir string, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio (default when stdin is piped)",
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c.Context, baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer rt.Close()
			return mcp.Run(c.Context, rt.coord, cfg, Version, c.App.Reader, c.App.Writer)
		},
	}
}

func createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create an empty profile",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionCreate, Name: c.Args().First()})
			if err != nil {
				return err
			}
			return outputJSON(c, resp.Profile)
		},
	}
}

func setTabsCmd() *cli.Command {
	return &cli.Command{
		Name:      "set-tabs",
		Usage:     "Replace the saved tabs of a profile",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "tab", Aliases: []string{"t"}, Usage: "Tab URL, in order; prefix with pin: to pin"},
			&cli.BoolFlag{Name: "stdin", Usage: `Read tabs as a JSON array ([{"url":..,"pinned":..}]) from stdin`},
		},
		Action: func(c *cli.Context) error {
			var tabList []profile.Tab
			if c.Bool("stdin") {
				if len(c.StringSlice("tab")) > 0 {
					return outputError(errors.NewInvalidRequest("use either --tab or --stdin, not both"))
				}
				parsed, err := readTabs(c.App.Reader)
				if err != nil {
					return outputError(err)
				}
				tabList = parsed
			} else {
				tabList = parseTabFlags(c.StringSlice("tab"))
			}

			resp, err := send(c, coordinator.Command{Action: coordinator.ActionSetTabs, Name: c.Args().First(), Tabs: tabList})
			if err != nil {
				return err
			}
			return outputJSON(c, resp.Profile)
		},
	}
}

func activateCmd() *cli.Command {
	return &cli.Command{
		Name:      "activate",
		Usage:     "Replace the window's tabs with a profile's tabs",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionActivate, Name: c.Args().First()})
			if err != nil {
				return err
			}
			return outputJSON(c, resp)
		},
	}
}

func deactivateCmd() *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "Restore the tabs open before the first activation",
		Action: func(c *cli.Context) error {
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionDeactivate})
			if err != nil {
				return err
			}
			return outputJSON(c, resp)
		},
	}
}

func stateCmd() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Show all profiles and the current profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print a markdown summary instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionGetState})
			if err != nil {
				return err
			}
			if c.Bool("markdown") {
				_, err := io.WriteString(c.App.Writer, profile.Summary(resp.ProfileList(), resp.Current()))
				return err
			}
			return outputJSON(c, resp.StateOutput)
		},
	}
}

func deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a profile",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionDelete, Name: c.Args().First()})
			if err != nil {
				return err
			}
			return outputJSON(c, resp)
		},
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all profiles to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Destination .jsonl path (default: <data dir>/exports/profiles-<unix>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			path, err := absPath(c.String("path"))
			if err != nil {
				return outputError(err)
			}
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionExport, Path: path})
			if err != nil {
				return err
			}
			return outputJSON(c, resp.Export)
		},
	}
}

func importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import profiles from a JSONL export file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(coordinator.ImportModeError), Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			path, err := absPath(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			resp, err := send(c, coordinator.Command{Action: coordinator.ActionImport, Path: path, Mode: c.String("mode")})
			if err != nil {
				return err
			}
			return outputJSON(c, resp.Import)
		},
	}
}

// Helper functions

// send posts cmd to the server at --addr. A failed command becomes a CLI error.
func send(c *cli.Context, cmd coordinator.Command) (coordinator.Response, error) {
	addr := c.String("addr")
	resp, err := newClient(addr).Do(c.Context, cmd)
	if err != nil {
		return resp, cli.Exit(fmt.Sprintf("cannot reach tabprofile at %s (is `tabprofile serve` running?): %v", addr, err), 1)
	}
	if !resp.Success {
		return resp, cli.Exit(fmt.Sprintf("[%s] %s", resp.Code, resp.Error), 1)
	}
	return resp, nil
}

// outputJSON writes v to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseTabFlags turns --tab values into tabs, honoring the pin: prefix.
func parseTabFlags(values []string) []profile.Tab {
	out := make([]profile.Tab, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if url, ok := strings.CutPrefix(v, pinnedPrefix); ok {
			out = append(out, profile.Tab{URL: url, Pinned: true})
			continue
		}
		out = append(out, profile.Tab{URL: v})
	}
	return out
}

// readTabs decodes a JSON tab array.
func readTabs(r io.Reader) ([]profile.Tab, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	var out []profile.Tab
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.NewInvalidRequest("stdin must hold a JSON array of tabs: " + err.Error())
	}
	return out, nil
}

// absPath resolves a client-side path so the server sees the same file.
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest("invalid path: " + err.Error())
	}
	return abs, nil
}
