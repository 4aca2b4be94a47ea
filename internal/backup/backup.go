// Package backup exports saved analysis reports to checksummed archive
// files and imports them back into a report store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/boolnet/internal/store"
)

// filePrefix and fileSuffix frame archive names made by GeneratePath.
const (
	filePrefix = "boolnet-reports-"
	fileSuffix = ".json.gz"
)

// DefaultDir returns the default archive directory (~/.boolnet/backups/).
func DefaultDir() (string, error) {
	dir, err := store.GlobalPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}

// GeneratePath creates a timestamped archive filename in dir. A non-empty
// network is folded into the name with unsafe characters replaced.
func GeneratePath(dir, network string, now time.Time) string {
	name := filePrefix
	if network != "" {
		name += strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			default:
				return '_'
			}
		}, network) + "-"
	}
	return filepath.Join(dir, name+now.UTC().Format("20060102-150405.000")+fileSuffix)
}

// Export writes every report in rs (only those of network, when non-empty)
// to an archive at path.
func Export(ctx context.Context, rs store.ReportStore, network, path string) (*Header, error) {
	reports, err := rs.ListReports(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []store.Report{}
	}

	var meta map[string]string
	if network != "" {
		meta = map[string]string{"network": network}
	}
	archive := &Archive{CreatedAt: time.Now().UTC(), Reports: reports}
	return Write(path, archive, meta)
}

// RestoreMode controls how Import handles reports that already exist.
type RestoreMode string

const (
	// RestoreMerge skips reports whose ID is already stored (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace overwrites stored reports with the archived copy.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult contains statistics about an import.
type RestoreResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
}

// Import loads the archive at path into rs.
func Import(ctx context.Context, rs store.ReportStore, path string, mode RestoreMode) (*RestoreResult, error) {
	if mode != RestoreMerge && mode != RestoreReplace {
		return nil, fmt.Errorf("unknown restore mode %q", mode)
	}
	_, archive, err := Read(path)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	for i := range archive.Reports {
		r := &archive.Reports[i]
		if mode == RestoreMerge {
			_, err := rs.GetReport(ctx, r.ID)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to check existing report %s: %w", r.ID, err)
			}
		}
		if _, err := rs.SaveReport(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to restore report %s: %w", r.ID, err)
		}
		result.Restored++
	}
	return result, nil
}
