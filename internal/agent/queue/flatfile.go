package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Flatfile stores the whole queue as a single JSON document with an
// auto-incrementing ID counter. It is the fallback backend: slower and
// rewritten on every mutation, but it needs only one writable file.
type Flatfile struct {
	path string
}

type flatfileDoc struct {
	NextID  int      `json:"nextId"`
	Actions []Action `json:"actions"`
}

func NewFlatfile(path string) (*Flatfile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}
	return &Flatfile{path: path}, nil
}

func (f *Flatfile) load() (flatfileDoc, error) {
	doc := flatfileDoc{NextID: 1, Actions: []Action{}}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read queue file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse queue file: %w", err)
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc, nil
}

func (f *Flatfile) save(doc flatfileDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal queue file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write queue file: %w", err)
	}
	return nil
}

// Append implements Backend.
func (f *Flatfile) Append(action Action) (Action, error) {
	doc, err := f.load()
	if err != nil {
		return Action{}, err
	}

	action.ID = strconv.Itoa(doc.NextID)
	doc.NextID++
	doc.Actions = append(doc.Actions, action)

	if err := f.save(doc); err != nil {
		return Action{}, err
	}
	return action, nil
}

// List implements Backend.
func (f *Flatfile) List() ([]Action, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return doc.Actions, nil
}

// Remove implements Backend.
func (f *Flatfile) Remove(id string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}

	kept := doc.Actions[:0]
	for _, action := range doc.Actions {
		if action.ID != id {
			kept = append(kept, action)
		}
	}
	doc.Actions = kept

	return f.save(doc)
}
