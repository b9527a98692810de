package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stylizer/internal/domain"
)

const fixture = `[
  {"id": "noir", "name": "Film Noir", "preview": "/previews/noir.png", "tags": ["bw", "moody"],
   "model_id": "flux-kontext", "lora": "noir-v2", "seed": 11, "prompt": "high contrast black and white", "negative_prompt": "color"},
  {"id": "sepia", "name": "Old Postcard", "preview": "/previews/sepia.png", "tags": ["warm"],
   "model_id": "flux-kontext", "lora": "", "seed": 7, "prompt": "faded sepia postcard", "negative_prompt": ""}
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestListReadsProfiles(t *testing.T) {
	c := NewCatalog(writeFixture(t))
	profiles, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if profiles[0].ID != "noir" || profiles[0].Seed != 11 {
		t.Fatalf("first profile = %+v", profiles[0])
	}
}

func TestListMissingFile(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := c.List(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewCatalog(path).List(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFind(t *testing.T) {
	c := NewCatalog(writeFixture(t))
	p, ok := c.Find("sepia")
	if !ok || p.Prompt != "faded sepia postcard" {
		t.Fatalf("Find(sepia) = %+v ok=%v", p, ok)
	}
	if _, ok := c.Find("vaporwave"); ok {
		t.Fatal("Find returned a profile for an unknown id")
	}
}
