package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Journal stores one JSON file per action. File names are ULIDs, so the
// lexical order of directory entries is the arrival order and no index file
// is needed.
type Journal struct {
	dir string
}

func NewJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return &Journal{dir: dir}, nil
}

// Append implements Backend.
func (j *Journal) Append(action Action) (Action, error) {
	action.ID = ulid.Make().String()

	data, err := json.Marshal(action)
	if err != nil {
		return Action{}, fmt.Errorf("failed to marshal action: %w", err)
	}

	path := filepath.Join(j.dir, action.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Action{}, fmt.Errorf("failed to write journal entry: %w", err)
	}
	return action, nil
}

// List implements Backend. Corrupt entries are skipped with a log line so one
// bad file cannot wedge the whole drain.
func (j *Journal) List() ([]Action, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	actions := make([]Action, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(j.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read journal entry %s: %w", name, err)
		}

		var action Action
		if err := json.Unmarshal(data, &action); err != nil {
			slog.Warn("skipping corrupt journal entry", "file", name, "error", err)
			continue
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// Remove implements Backend.
func (j *Journal) Remove(id string) error {
	err := os.Remove(filepath.Join(j.dir, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove journal entry: %w", err)
	}
	return nil
}
