package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Info holds archive metadata for retention decisions.
type Info struct {
	Path      string
	Size      int64
	CreatedAt time.Time

	// Network is the network the archive was exported for; empty for
	// archives of the whole store.
	Network string
	Reports int
}

// RetentionPolicy decides which archives to keep.
type RetentionPolicy interface {
	Apply(archives []Info) (keep []Info)
}

// LatestPerNetwork keeps the Keep newest archives of each network. Whole-store
// archives form their own group.
type LatestPerNetwork struct {
	Keep int
}

// Apply keeps the first Keep archives of each network (archives are assumed
// sorted newest-first).
func (p LatestPerNetwork) Apply(archives []Info) []Info {
	seen := make(map[string]int)
	var keep []Info
	for _, a := range archives {
		if seen[a.Network] < p.Keep {
			keep = append(keep, a)
		}
		seen[a.Network]++
	}
	return keep
}

// NewerThan keeps archives created within MaxAge of now.
type NewerThan struct {
	MaxAge time.Duration
	Now    func() time.Time
}

// Apply keeps archives whose CreatedAt is after the cutoff.
func (p NewerThan) Apply(archives []Info) []Info {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	cutoff := now().Add(-p.MaxAge)
	var keep []Info
	for _, a := range archives {
		if a.CreatedAt.After(cutoff) {
			keep = append(keep, a)
		}
	}
	return keep
}

// AnyOf keeps an archive if any of its policies keeps it.
type AnyOf []RetentionPolicy

// Apply returns the union of the archives kept by each policy, in input
// order.
func (p AnyOf) Apply(archives []Info) []Info {
	kept := make(map[string]bool)
	for _, policy := range p {
		for _, a := range policy.Apply(archives) {
			kept[a.Path] = true
		}
	}

	var result []Info
	for _, a := range archives {
		if kept[a.Path] {
			result = append(result, a)
		}
	}
	return result
}

// List scans dir for archives named by GeneratePath, newest first. Creation
// time, network and report count come from each archive's header; files
// whose header cannot be read are left out, so retention never removes them.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var archives []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, name)
		h, err := ReadHeader(path)
		if err != nil {
			continue
		}
		archives = append(archives, Info{
			Path:      path,
			Size:      info.Size(),
			CreatedAt: h.CreatedAt,
			Network:   h.Metadata["network"],
			Reports:   h.ReportCount,
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].CreatedAt.After(archives[j].CreatedAt)
	})
	return archives, nil
}

// ApplyRetention deletes archives in dir not kept by the policy.
func ApplyRetention(dir string, policy RetentionPolicy) (deleted []string, err error) {
	archives, err := List(dir)
	if err != nil {
		return nil, err
	}

	keep := policy.Apply(archives)
	keepSet := make(map[string]bool, len(keep))
	for _, a := range keep {
		keepSet[a.Path] = true
	}

	for _, a := range archives {
		if !keepSet[a.Path] {
			if err := os.Remove(a.Path); err != nil {
				return deleted, fmt.Errorf("removing %s: %w", filepath.Base(a.Path), err)
			}
			deleted = append(deleted, a.Path)
		}
	}
	return deleted, nil
}

// ParseDuration parses duration strings like "30d", "2w", "720h".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}
	switch suffix {
	case 'd':
		return time.Duration(num) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration suffix %q in %q", string(suffix), s)
	}
}
