package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Renderer != "plotly" {
		t.Errorf("Renderer = %q, want plotly", cfg.Renderer)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Web.Listen != "localhost:8080" {
		t.Errorf("Web.Listen = %q, want localhost:8080", cfg.Web.Listen)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.toml")
	content := "renderer = \"svg\"\nseed = 7\n\n[web]\nlisten = \"0.0.0.0:9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Renderer != "svg" {
		t.Errorf("Renderer = %q, want svg", cfg.Renderer)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Web.Listen != "0.0.0.0:9000" {
		t.Errorf("Web.Listen = %q, want 0.0.0.0:9000", cfg.Web.Listen)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.toml")
	if err := os.WriteFile(path, []byte("renderer = [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
