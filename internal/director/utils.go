package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GenerateTracePath creates a timestamped trace filename inside dir
func GenerateTracePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("trace_%s.yaml", timestamp))
}

// FindLatestTrace finds the most recently modified trace file in dir
func FindLatestTrace(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read trace directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var traces []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		traces = append(traces, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(traces) == 0 {
		return "", fmt.Errorf("no trace files found in %s", dir)
	}

	// Newest first
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].mod.After(traces[j].mod)
	})

	return traces[0].path, nil
}
