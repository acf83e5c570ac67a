package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vasysik/repotxt/internal/config"
	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/ranges"
	"github.com/Vasysik/repotxt/internal/rules"
)

func setup(t *testing.T, files map[string]string, cfg *config.Config) (string, *rules.Resolver, *Generator) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	root := pathutil.CanonicalDir(dir)
	auto := rules.NewAutoSet()
	auto.Rebuild(root, cfg)
	res := rules.NewResolver(auto)
	return root, res, New(res, cfg, root, "demo")
}

func plainConfig(patterns ...string) *config.Config {
	cfg := config.Default()
	cfg.ExcludePatterns = patterns
	cfg.RespectIgnoreFiles = false
	cfg.ExcludeBinary = false
	return cfg
}

func TestNoWorkspace(t *testing.T) {
	gen := New(nil, config.Default(), "", "")
	if got := gen.Generate(); got != NoWorkspace {
		t.Fatalf("Generate() = %q, want %q", got, NoWorkspace)
	}
}

func TestReportFormat(t *testing.T) {
	_, _, gen := setup(t, map[string]string{
		"src/app.ts": "let a = 1\n",
		"readme.md":  "# demo\n",
	}, plainConfig())

	got := gen.Generate()
	want := "Folder Structure: demo\n" +
		"src/\n" +
		"src/app.ts\n" +
		"readme.md\n" +
		"\n" +
		"File: readme.md\nContent: # demo\n\n" +
		"File: src/app.ts\nContent: let a = 1\n"
	if got != want {
		t.Fatalf("report mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestAutoExclusionScenario(t *testing.T) {
	_, _, gen := setup(t, map[string]string{
		"src/app.ts":        "let a = 1\n",
		"node_modules/x.js": "x\n",
		"debug.log":         "log\n",
		"src/deep/old.log":  "old\n",
	}, plainConfig("node_modules", "*.log"))

	got := gen.Generate()
	for _, absent := range []string{"node_modules", "debug.log", "old.log"} {
		if strings.Contains(got, absent) {
			t.Fatalf("excluded path %q leaked into report:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "src/\n") || !strings.Contains(got, "src/app.ts\n") {
		t.Fatalf("expected src/ and src/app.ts in the listing:\n%s", got)
	}
	if !strings.Contains(got, "File: src/app.ts\nContent: let a = 1\n") {
		t.Fatalf("expected app.ts content block:\n%s", got)
	}
}

func TestManualIncludeSurfacesInsideExcludedDir(t *testing.T) {
	root, res, gen := setup(t, map[string]string{
		"docs/readme.md": "# readme\n",
		"docs/other.md":  "other\n",
		"main.go":        "package main\n",
	}, plainConfig("docs"))
	res.Toggle(root + "docs/readme.md") // excluded via docs/, toggle includes it

	got := gen.Generate()
	if !strings.Contains(got, "docs/\n") || !strings.Contains(got, "docs/readme.md\n") {
		t.Fatalf("overridden content must stay reachable in the listing:\n%s", got)
	}
	if strings.Contains(got, "docs/other.md") {
		t.Fatalf("sibling without override must stay hidden:\n%s", got)
	}
	if !strings.Contains(got, "File: docs/readme.md\nContent: # readme\n") {
		t.Fatalf("manually included file content missing:\n%s", got)
	}
}

func TestPartialSelectionBlock(t *testing.T) {
	root, res, gen := setup(t, map[string]string{
		"main.go": "one\ntwo\nthree\nfour\nfive\n",
	}, plainConfig())
	res.AddPartial(root+"main.go", []ranges.Range{{Start: 1, End: 2}, {Start: 4, End: 4}})

	got := gen.Generate()
	want := "File: main.go (lines 1-2, 4-4)\nContent: one\ntwo\nfour\n"
	if !strings.Contains(got, want) {
		t.Fatalf("expected range-restricted block %q in:\n%s", want, got)
	}
}

func TestPartialFileInsideExcludedDirStillEmitted(t *testing.T) {
	root, res, gen := setup(t, map[string]string{
		"vendor/lib.js": "l1\nl2\nl3\n",
		"main.go":       "package main\n",
	}, plainConfig("vendor"))
	res.AddPartial(root+"vendor/lib.js", []ranges.Range{{Start: 2, End: 3}})

	got := gen.Generate()
	if !strings.Contains(got, "File: vendor/lib.js (lines 2-3)\nContent: l2\nl3\n") {
		t.Fatalf("partial file below excluded dir must be emitted:\n%s", got)
	}
}

func TestBinaryPlaceholder(t *testing.T) {
	cfg := plainConfig()
	cfg.BinaryExtensions = []string{".png"}
	// Binary extension exclusion off: the file stays included but its
	// content is replaced by the placeholder.
	_, _, gen := setup(t, map[string]string{"logo.png": "\x89PNG"}, cfg)

	got := gen.Generate()
	if !strings.Contains(got, "File: logo.png\nContent: "+BinaryPlaceholder+"\n") {
		t.Fatalf("expected binary placeholder:\n%s", got)
	}
}

func TestAIPromptPreamble(t *testing.T) {
	cfg := plainConfig()
	cfg.AIReport = true
	cfg.AIPrompt = "Analyze ${workspaceName} carefully."
	_, _, gen := setup(t, map[string]string{"a.txt": "x\n"}, cfg)

	got := gen.Generate()
	if !strings.HasPrefix(got, "Analyze demo carefully.\n\nFolder Structure: demo\n") {
		t.Fatalf("expected substituted prompt preamble:\n%s", got)
	}
}

// Every path in the structure listing must be visually visible, and every
// walked path absent from it must be visually excluded.
func TestReportVisibilityConsistency(t *testing.T) {
	root, res, gen := setup(t, map[string]string{
		"src/app.ts":       "a\n",
		"src/deep/old.log": "o\n",
		"docs/readme.md":   "r\n",
	}, plainConfig("docs", "*.log"))
	res.Toggle(root + "docs/readme.md")

	got := gen.Generate()
	structure := map[string]bool{}
	lines := strings.Split(got, "\n")
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		structure[line] = true
	}

	for _, entry := range rules.WalkTree(root) {
		rel := entry.Rel
		p := root + rel
		if entry.IsDir {
			rel += "/"
			p += "/"
		}
		if structure[rel] == res.VisuallyExcluded(p) {
			t.Fatalf("listing and resolver disagree on %q (listed=%v, visuallyExcluded=%v)",
				rel, structure[rel], res.VisuallyExcluded(p))
		}
	}
}
