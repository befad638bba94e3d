package coordinator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// ImportMode controls what happens when an imported name already exists.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail the whole import
	ImportModeReplace ImportMode = "replace" // overwrite the saved tabs
)

// ImportOutput describes a finished import.
type ImportOutput struct {
	Path     string `json:"path"`
	Created  int    `json:"created"`
	Replaced int    `json:"replaced"`
}

// maxImportLine bounds a single JSONL line.
const maxImportLine = 4 << 20

// Import loads profiles from an export file. New profiles are created
// inactive. In replace mode existing profiles get the imported tabs and keep
// their id and active flag. Nothing is written unless the whole file applies.
func (c *Coordinator) Import(ctx context.Context, path string, mode ImportMode) (*ImportOutput, error) {
	if mode == "" {
		mode = ImportModeError
	}
	if mode != ImportModeError && mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	var out *ImportOutput
	err := c.exclusive(ctx, func(ctx context.Context) error {
		st, err := c.reconcile(ctx)
		if err != nil {
			return err
		}

		abs, err := validatePath(path, true)
		if err != nil {
			return err
		}
		file, err := openNoFollow(abs, os.O_RDONLY, 0)
		if err != nil {
			if _, ok := errors.As(err); ok {
				return err
			}
			return errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
		}
		defer file.Close()

		records, err := parseExport(file)
		if err != nil {
			return err
		}

		out = &ImportOutput{Path: abs}
		seen := map[string]bool{}
		for _, r := range records {
			existing, exists := st.profiles[r.Name]
			if mode == ImportModeError && (exists || seen[r.Name]) {
				return errors.NewNameAlreadyExists(r.Name)
			}
			seen[r.Name] = true

			if exists {
				existing.Tabs = r.Tabs
				out.Replaced++
				continue
			}
			id := r.ID
			if id == "" {
				id = profile.NewID()
			}
			st.profiles[r.Name] = &profile.Profile{Name: r.Name, ID: id, Tabs: r.Tabs}
			out.Created++
		}

		if err := c.persist(ctx, st.profiles); err != nil {
			return err
		}
		pslog.Ctx(ctx).Info("profiles.import", "path", abs, "mode", string(mode), "created", out.Created, "replaced", out.Replaced)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseExport reads profile records from r, skipping the header line and
// blank lines. Any malformed line fails the whole parse.
func parseExport(r io.Reader) ([]ExportRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	var records []ExportRecord
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var header ExportHeader
		if err := json.Unmarshal(line, &header); err == nil && header.TabprofileExport {
			continue
		}

		var record ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("line %d: invalid JSON: %v", lineNum, err))
		}
		record.Name = profile.NormalizeName(record.Name)
		if record.Name == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("line %d: name is required", lineNum))
		}
		if pErr, ok := errors.As(validateTabs(record.Tabs)); ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("line %d: %s", lineNum, pErr.Message))
		}
		record.Tabs = profile.CloneTabs(record.Tabs)
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("line %d: failed to read file: %v", lineNum+1, err))
	}
	return records, nil
}
