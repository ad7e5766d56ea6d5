package portfolio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.json")} {
		p, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", path, err)
		}
		if len(p.Skills) != 6 || len(p.Projects) != 6 {
			t.Errorf("Expected default profile, got %d skills and %d projects", len(p.Skills), len(p.Projects))
		}
	}
}

func TestLoad_OverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	body := `{"name":"Someone","skills":[{"label":"Go","level":90}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Name != "Someone" {
		t.Errorf("Expected name override, got %q", p.Name)
	}
	if len(p.Skills) != 1 || p.Skills[0].Label != "Go" {
		t.Errorf("Expected skills override, got %+v", p.Skills)
	}
	if len(p.Projects) != 6 {
		t.Errorf("Expected default projects kept, got %d", len(p.Projects))
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"name":`,
		"empty name":    `{"name":""}`,
		"bad level":     `{"skills":[{"label":"Go","level":120}]}`,
		"untitled card": `{"projects":[{"description":"x"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.json")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Expected error")
			}
		})
	}
}
