package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AutoExclude || !cfg.RespectIgnoreFiles || !cfg.ExcludeBinary {
		t.Fatalf("defaults should enable all automatic exclusion: %+v", cfg)
	}
	if cfg.AIReport {
		t.Fatalf("AI report must default to off")
	}
	if len(cfg.ExcludePatterns) == 0 || cfg.IgnoreFiles[0] != ".gitignore" {
		t.Fatalf("unexpected default pattern config: %+v", cfg)
	}
}

func TestLoadOverridesAndProfiles(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, FileName)
	body := `
autoExclude: false
excludePatterns:
  - vendor
aiReport: true
profiles:
  default:
    excludePatterns:
      - "*.tmp"
  strict:
    excludePatterns:
      - "*.md"
    binaryExtensions:
      - ".dat"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path, "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AutoExclude {
		t.Fatalf("autoExclude should be overridden to false")
	}
	if !cfg.AIReport {
		t.Fatalf("aiReport should be overridden to true")
	}
	want := []string{"vendor", "*.md"}
	if len(cfg.ExcludePatterns) != 2 || cfg.ExcludePatterns[0] != want[0] || cfg.ExcludePatterns[1] != want[1] {
		t.Fatalf("patterns = %v, want %v", cfg.ExcludePatterns, want)
	}
	if !cfg.IsBinaryExtension(".dat") {
		t.Fatalf("profile binary extension not applied")
	}
	// Unset keys keep their defaults.
	if !cfg.RespectIgnoreFiles {
		t.Fatalf("respectIgnoreFiles should keep its default")
	}

	// Unknown profile falls back to "default".
	cfg, err = Load(path, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ExcludePatterns) != 2 || cfg.ExcludePatterns[1] != "*.tmp" {
		t.Fatalf("default profile not applied: %v", cfg.ExcludePatterns)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(":\n\t- nope"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
