package coordinator

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
	"github.com/hpungsan/tabprofile/internal/tabs"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory("https://base.com"))
	mustCreate(t, c, "work", tabA, tabB)
	mustCreate(t, c, "home")
	require.NoError(t, c.Activate(ctx, "work"))

	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := c.Export(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, path, out.Path)

	lines := readLines(t, path)
	require.Len(t, lines, 3)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	require.True(t, header.TabprofileExport)
	require.Equal(t, ExportSchemaVersion, header.SchemaVersion)
	require.Equal(t, out.ExportedAt, header.ExportedAt)

	var first ExportRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &first))
	require.Equal(t, "work", first.Name)
	require.Equal(t, []profile.Tab{tabA, tabB}, first.Tabs)
	require.NotContains(t, lines[1], "active")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not remain")
}

func TestExport_DefaultPath(t *testing.T) {
	baseDir := t.TempDir()
	c := New(newMemStore(), tabs.NewMemory(), config.DefaultConfig(), baseDir)
	mustCreate(t, c, "work")

	out, err := c.Export(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(baseDir, "exports"), filepath.Dir(out.Path))
	require.True(t, strings.HasPrefix(filepath.Base(out.Path), "profiles-"))
	require.Equal(t, ".jsonl", filepath.Ext(out.Path))
	require.FileExists(t, out.Path)
}

func TestExport_InvalidPaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory())

	for _, path := range []string{
		filepath.Join(dir, "out.json"),
		dir + string(filepath.Separator) + ".." + string(filepath.Separator) + "out.jsonl",
		dir + string(filepath.Separator),
	} {
		_, err := c.Export(ctx, path)
		requireCode(t, err, errors.ErrInvalidRequest)
	}
}

func TestExport_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory())
	mustCreate(t, c, "work")

	_, err := c.Export(context.Background(), filepath.Join(dir, "out.jsonl"))
	requireCode(t, err, errors.ErrInvalidRequest)

	_, err = os.Stat(filepath.Dir(dir))
	require.True(t, os.IsNotExist(err), "export must not create parent directories")
}

func TestExport_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.jsonl")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0600))
	link := filepath.Join(dir, "link.jsonl")
	require.NoError(t, os.Symlink(target, link))

	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory())
	_, err := c.Export(context.Background(), link)
	requireCode(t, err, errors.ErrInvalidRequest)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "keep", string(data))
}

func TestImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestCoordinator(t, newMemStore(), tabs.NewMemory())
	mustCreate(t, src, "work", tabA, tabB)
	mustCreate(t, src, "home")
	path := filepath.Join(t.TempDir(), "profiles.jsonl")
	_, err := src.Export(ctx, path)
	require.NoError(t, err)

	store := newMemStore()
	dst := newTestCoordinator(t, store, tabs.NewMemory())
	out, err := dst.Import(ctx, path, "")
	require.NoError(t, err)
	require.Equal(t, 2, out.Created)
	require.Equal(t, 0, out.Replaced)

	srcState := mustState(t, src)
	dstState := mustState(t, dst)
	require.Equal(t, srcState.Profiles, dstState.Profiles)
	require.Equal(t, 0, persisted(t, store).ActiveCount())
}

func writeImport(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

func TestImport_ModeErrorIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := newTestCoordinator(t, store, tabs.NewMemory())
	mustCreate(t, c, "home")

	path := writeImport(t,
		`{"_tabprofile_export":true,"schema_version":"1.0","exported_at":1}`,
		`{"name":"new","tabs":[{"url":"https://n.com","pinned":false}]}`,
		`{"name":"home","tabs":[]}`,
	)

	_, err := c.Import(ctx, path, ImportModeError)
	requireCode(t, err, errors.ErrNameAlreadyExists)
	require.NotContains(t, persisted(t, store), "new")
}

func TestImport_DuplicateNamesInFile(t *testing.T) {
	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory())
	path := writeImport(t, `{"name":"a","tabs":[]}`, `{"name":" a ","tabs":[]}`)

	_, err := c.Import(context.Background(), path, ImportModeError)
	requireCode(t, err, errors.ErrNameAlreadyExists)
}

func TestImport_ModeReplace(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	window := tabs.NewMemory("https://base.com")
	c := newTestCoordinator(t, store, window)
	mustCreate(t, c, "work", tabA)
	require.NoError(t, c.Activate(ctx, "work"))
	before := persisted(t, store)["work"]

	path := writeImport(t,
		`{"name":"work","id":"ignored","tabs":[{"url":"https://new.com","pinned":true}]}`,
		`{"name":"fresh","tabs":[]}`,
	)
	out, err := c.Import(ctx, path, ImportModeReplace)
	require.NoError(t, err)
	require.Equal(t, 1, out.Created)
	require.Equal(t, 1, out.Replaced)

	saved := persisted(t, store)
	require.Equal(t, before.ID, saved["work"].ID)
	require.True(t, saved["work"].Active)
	require.Equal(t, []profile.Tab{{URL: "https://new.com", Pinned: true}}, saved["work"].Tabs)
	require.False(t, saved["fresh"].Active)
	require.Len(t, saved["fresh"].ID, 26)

	// The window is not touched by an import
	require.Equal(t, []profile.Tab{tabA}, windowTabs(t, window))
}

func TestImport_Invalid(t *testing.T) {
	ctx := context.Background()
	c := newTestCoordinator(t, newMemStore(), tabs.NewMemory())

	tests := []struct {
		name  string
		lines []string
	}{
		{name: "bad json", lines: []string{`{"name":`}},
		{name: "missing name", lines: []string{`{"tabs":[]}`}},
		{name: "blank url", lines: []string{`{"name":"a","tabs":[{"url":""}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Import(ctx, writeImport(t, tt.lines...), ImportModeReplace)
			requireCode(t, err, errors.ErrInvalidRequest)
		})
	}

	_, err := c.Import(ctx, filepath.Join(t.TempDir(), "missing.jsonl"), "")
	requireCode(t, err, errors.ErrInvalidRequest)
	require.Empty(t, mustState(t, c).Profiles)
}
