// Package config holds the options consumed by the exclusion engine and
// report generator, with defaults overridable from a .repotxt.yaml file at
// the workspace root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-workspace configuration file.
const FileName = ".repotxt.yaml"

// DefaultPrompt is prepended to AI-style reports, with ${workspaceName}
// substituted at generation time.
const DefaultPrompt = "You are reviewing the ${workspaceName} project. " +
	"The message below contains a flattened snapshot of the repository: first a folder structure listing, " +
	"then the contents of every included file. Paths are relative to the project root. " +
	"Some files may be truncated to selected line ranges; their headers name the included lines. " +
	"Use only this snapshot when answering questions about the project."

// Config is the full option set of the engine. All fields are read-only
// inputs to the core; mutating them requires a rebuild via the engine.
type Config struct {
	AutoExclude        bool     `yaml:"autoExclude"`
	ExcludePatterns    []string `yaml:"excludePatterns"`
	RespectIgnoreFiles bool     `yaml:"respectIgnoreFiles"`
	IgnoreFiles        []string `yaml:"ignoreFiles"`
	ExcludeBinary      bool     `yaml:"excludeBinary"`
	BinaryExtensions   []string `yaml:"binaryExtensions"`
	AIReport           bool     `yaml:"aiReport"`
	AIPrompt           string   `yaml:"aiPrompt"`
	Output             string   `yaml:"output"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		AutoExclude: true,
		ExcludePatterns: []string{
			".git", "node_modules", "dist", "build", "out",
			"coverage", ".next", ".vscode", ".idea",
		},
		RespectIgnoreFiles: true,
		IgnoreFiles:        []string{".gitignore"},
		ExcludeBinary:      true,
		BinaryExtensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".ico", ".webp", ".pdf",
			".zip", ".tar", ".gz", ".7z", ".rar",
			".exe", ".dll", ".so", ".dylib", ".bin", ".class", ".jar",
			".woff", ".woff2", ".ttf", ".eot",
			".mp3", ".mp4", ".avi", ".mov",
		},
		AIReport: false,
		AIPrompt: DefaultPrompt,
		Output:   "print",
	}
}

// fileConfig mirrors Config with pointer fields so absent keys fall back to
// defaults instead of zeroing them.
type fileConfig struct {
	AutoExclude        *bool     `yaml:"autoExclude"`
	ExcludePatterns    *[]string `yaml:"excludePatterns"`
	RespectIgnoreFiles *bool     `yaml:"respectIgnoreFiles"`
	IgnoreFiles        *[]string `yaml:"ignoreFiles"`
	ExcludeBinary      *bool     `yaml:"excludeBinary"`
	BinaryExtensions   *[]string `yaml:"binaryExtensions"`
	AIReport           *bool     `yaml:"aiReport"`
	AIPrompt           *string   `yaml:"aiPrompt"`
	Output             *string   `yaml:"output"`

	Profiles map[string]profile `yaml:"profiles"`
}

// profile extends the base configuration; pattern and extension lists are
// appended, not replaced.
type profile struct {
	ExcludePatterns  []string `yaml:"excludePatterns"`
	BinaryExtensions []string `yaml:"binaryExtensions"`
}

// Load reads the configuration file at path merged over Default. A missing
// file yields the defaults. When the file defines profiles, the named
// profile is applied, falling back to the "default" profile if the name is
// absent.
func Load(path string, profileName string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.AutoExclude != nil {
		cfg.AutoExclude = *fc.AutoExclude
	}
	if fc.ExcludePatterns != nil {
		cfg.ExcludePatterns = append([]string{}, (*fc.ExcludePatterns)...)
	}
	if fc.RespectIgnoreFiles != nil {
		cfg.RespectIgnoreFiles = *fc.RespectIgnoreFiles
	}
	if fc.IgnoreFiles != nil {
		cfg.IgnoreFiles = append([]string{}, (*fc.IgnoreFiles)...)
	}
	if fc.ExcludeBinary != nil {
		cfg.ExcludeBinary = *fc.ExcludeBinary
	}
	if fc.BinaryExtensions != nil {
		cfg.BinaryExtensions = append([]string{}, (*fc.BinaryExtensions)...)
	}
	if fc.AIReport != nil {
		cfg.AIReport = *fc.AIReport
	}
	if fc.AIPrompt != nil {
		cfg.AIPrompt = *fc.AIPrompt
	}
	if fc.Output != nil {
		cfg.Output = *fc.Output
	}

	if len(fc.Profiles) > 0 {
		prof, ok := fc.Profiles[profileName]
		if !ok {
			prof, ok = fc.Profiles["default"]
		}
		if ok {
			cfg.ExcludePatterns = append(cfg.ExcludePatterns, prof.ExcludePatterns...)
			cfg.BinaryExtensions = append(cfg.BinaryExtensions, prof.BinaryExtensions...)
		}
	}

	return cfg, nil
}

// LoadWorkspace reads the workspace configuration for the given root
// directory.
func LoadWorkspace(root string, profileName string) (*Config, error) {
	return Load(filepath.Join(root, FileName), profileName)
}

// IsBinaryExtension reports whether ext (including the dot) is configured
// as binary. Matching is exact on the lowercase extension.
func (c *Config) IsBinaryExtension(ext string) bool {
	for _, e := range c.BinaryExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
