package coordinator

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// ExportSchemaVersion is written in the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	TabprofileExport bool   `json:"_tabprofile_export"`
	SchemaVersion    string `json:"schema_version"`
	ExportedAt       int64  `json:"exported_at"`
}

// ExportRecord is one profile line of an export file. Active flags and
// session state are never exported.
type ExportRecord struct {
	Name string        `json:"name"`
	ID   string        `json:"id,omitempty"`
	Tabs []profile.Tab `json:"tabs"`
}

// ExportOutput describes a finished export.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes every profile to a JSONL file. An empty path writes to
// exports/profiles-<unix>.jsonl under the base directory, creating it if
// needed; any other path must name a file in an existing directory. The file
// is written to a temp file first, so an existing file survives a failure.
func (c *Coordinator) Export(ctx context.Context, path string) (*ExportOutput, error) {
	var out *ExportOutput
	err := c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		defaulted := path == ""
		if defaulted {
			path = filepath.Join(c.exportsDir, fmt.Sprintf("profiles-%d.jsonl", now.Unix()))
		}
		abs, err := validatePath(path, false)
		if err != nil {
			return err
		}

		ordered := st.profiles.Ordered()
		if err := writeExport(abs, now, ordered, defaulted); err != nil {
			return err
		}

		out = &ExportOutput{Path: abs, Count: len(ordered), ExportedAt: now.Unix()}
		pslog.Ctx(ctx).Info("profiles.export", "path", abs, "count", out.Count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func writeExport(path string, now time.Time, profiles []*profile.Profile, createDir bool) error {
	dir := filepath.Dir(path)
	if createDir {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
		}
	} else if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.NewInvalidRequest("export directory does not exist: " + dir)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	if err := enc.Encode(ExportHeader{
		TabprofileExport: true,
		SchemaVersion:    ExportSchemaVersion,
		ExportedAt:       now.Unix(),
	}); err != nil {
		return errors.NewInternal(err)
	}
	for _, p := range profiles {
		if err := enc.Encode(ExportRecord{Name: p.Name, ID: p.ID, Tabs: profile.CloneTabs(p.Tabs)}); err != nil {
			return errors.NewInternal(err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	success = true
	return nil
}
