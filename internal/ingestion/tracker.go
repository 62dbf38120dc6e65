package ingestion

import (
	"fmt"
	"os"
	"strings"
)

// Tracker is the append-only set of source files already embedded. The
// backing log is newline-delimited, read fully at load, and only ever
// appended to. A file identifier appears at most once.
type Tracker struct {
	path string
	seen map[string]struct{}
}

// LoadTracker reads the processed-file log at path. A missing log means
// nothing has been processed yet.
func LoadTracker(path string) (*Tracker, error) {
	t := &Tracker{
		path: path,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to read processed log: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			t.seen[line] = struct{}{}
		}
	}

	return t, nil
}

func (t *Tracker) Contains(name string) bool {
	_, ok := t.seen[name]
	return ok
}

func (t *Tracker) Len() int {
	return len(t.seen)
}

// Append records name as processed, exactly once. Called only after the
// file's chunks have been written to the vector store.
func (t *Tracker) Append(name string) error {
	if t.Contains(name) {
		return nil
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open processed log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(name + "\n"); err != nil {
		return fmt.Errorf("failed to append to processed log: %w", err)
	}

	t.seen[name] = struct{}{}
	return nil
}
