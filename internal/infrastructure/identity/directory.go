// Package identity resolves worker ids to display names from a YAML directory file.
package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

// Directory is an immutable worker directory loaded once at startup.
//
// File format:
//
//	workers:
//	  - id: w-1
//	    name: Alice Example
type Directory struct {
	names map[string]string
}

type directoryFile struct {
	Workers []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"workers"`
}

func NewDirectory(names map[string]string) *Directory {
	d := &Directory{names: make(map[string]string, len(names))}
	for id, name := range names {
		d.names[strings.TrimSpace(id)] = strings.TrimSpace(name)
	}
	return d
}

// Load reads a directory file. An empty path yields an empty directory, so every
// lookup falls back to the worker id.
func Load(path string) (*Directory, error) {
	if strings.TrimSpace(path) == "" {
		return NewDirectory(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity directory: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Directory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse identity directory: %w", err)
	}
	names := make(map[string]string, len(file.Workers))
	for i, w := range file.Workers {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return nil, fmt.Errorf("parse identity directory: worker %d has empty id", i)
		}
		if _, dup := names[id]; dup {
			return nil, fmt.Errorf("parse identity directory: duplicate worker id %q", id)
		}
		names[id] = w.Name
	}
	return NewDirectory(names), nil
}

func (d *Directory) DisplayName(_ context.Context, workerID string) (string, error) {
	name, ok := d.names[strings.TrimSpace(workerID)]
	if !ok || name == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve worker", fmt.Errorf("unknown worker %q", workerID))
	}
	return name, nil
}

func (d *Directory) Len() int {
	return len(d.names)
}
