// Package profile serves the style-profile catalog used by the frontend and
// by job submission to resolve default prompts and seeds.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"stylizer/internal/domain"
)

// Profile describes one selectable style preset.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Preview        string   `json:"preview"`
	Tags           []string `json:"tags"`
	ModelID        string   `json:"model_id"`
	Lora           string   `json:"lora"`
	Seed           int64    `json:"seed"`
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt"`
}

// Catalog reads profiles from a JSON file. The file is re-read on every List
// so edits show up without a restart.
type Catalog struct {
	path string
}

// NewCatalog points a catalog at the given JSON file.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// List returns all profiles. A missing file maps to domain.ErrNotFound.
func (c *Catalog) List() ([]Profile, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// Find looks a profile up by id.
func (c *Catalog) Find(id string) (Profile, bool) {
	profiles, err := c.List()
	if err != nil {
		return Profile{}, false
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}
