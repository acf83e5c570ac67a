// Package report flattens the visible part of a workspace into a single
// text document: a folder structure listing followed by per-file content
// blocks. The output format is a compatibility contract and must not drift.
package report

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Vasysik/repotxt/internal/config"
	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/ranges"
	"github.com/Vasysik/repotxt/internal/rules"
	"github.com/Vasysik/repotxt/internal/stats"
)

const (
	// UnreadablePlaceholder replaces content that could not be read.
	UnreadablePlaceholder = "[Unable to read file content]"
	// BinaryPlaceholder replaces content of configured binary extensions.
	BinaryPlaceholder = "[Binary file content excluded]"
	// NoWorkspace is the fixed result when no workspace is open.
	NoWorkspace = "No workspace folder opened"
)

// Generator produces the flattened report for one workspace.
type Generator struct {
	res  *rules.Resolver
	cfg  *config.Config
	root string
	name string
}

// New creates a generator. root is the canonical workspace directory, ""
// when no workspace is open.
func New(res *rules.Resolver, cfg *config.Config, root string, name string) *Generator {
	return &Generator{res: res, cfg: cfg, root: root, name: name}
}

// Generate runs both passes and assembles the report. Unreadable entries
// degrade to placeholders; generation itself never fails.
func (g *Generator) Generate() string {
	if g.root == "" {
		return NoWorkspace
	}

	var structure strings.Builder
	g.structurePass(g.root, &structure)

	var blocks []string
	g.contentPass(g.root, &blocks)

	var out strings.Builder
	if g.cfg.AIReport && g.cfg.AIPrompt != "" {
		out.WriteString(strings.ReplaceAll(g.cfg.AIPrompt, "${workspaceName}", g.name))
		out.WriteString("\n\n")
	}
	out.WriteString("Folder Structure: ")
	out.WriteString(g.name)
	out.WriteString("\n")
	out.WriteString(structure.String())
	out.WriteString("\n")
	out.WriteString(strings.Join(blocks, "\n"))
	return out.String()
}

// structurePass appends one flat, non-indented line per visible entry,
// directories first then alphabetical within each level. A directory is
// descended exactly when it is visible, which already accounts for manual
// includes and partial selections beneath it.
func (g *Generator) structurePass(dir string, out *strings.Builder) {
	entries, err := os.ReadDir(strings.TrimSuffix(dir, "/"))
	if err != nil {
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		child := dir + entry.Name()
		if entry.IsDir() {
			child += "/"
		}
		if g.res.VisuallyExcluded(child) {
			continue
		}
		out.WriteString(pathutil.Rel(g.root, child))
		out.WriteString("\n")
		if entry.IsDir() {
			g.structurePass(child, out)
		}
	}
}

// contentPass emits one block per included file, in plain alphabetical
// order per level. Effectively excluded files still appear when a partial
// selection marks them fractionally included; excluded directories are
// still descended when an override beneath them must surface.
func (g *Generator) contentPass(dir string, blocks *[]string) {
	entries, err := os.ReadDir(strings.TrimSuffix(dir, "/"))
	if err != nil {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() {
			child := dir + entry.Name() + "/"
			if !g.res.EffectivelyExcluded(child) || g.res.HasOverrideDescendant(child) {
				g.contentPass(child, blocks)
			}
			continue
		}
		child := dir + entry.Name()
		sel := g.res.Partial(child)
		if g.res.EffectivelyExcluded(child) && len(sel) == 0 {
			continue
		}
		*blocks = append(*blocks, g.fileBlock(child, sel))
	}
}

func (g *Generator) fileBlock(p string, sel []ranges.Range) string {
	header := "File: " + pathutil.Rel(g.root, p)
	var content string
	switch {
	case len(sel) > 0:
		header += " (lines " + ranges.Format(sel) + ")"
		content = g.rangeContent(p, sel)
	case g.cfg.IsBinaryExtension(strings.ToLower(filepath.Ext(p))):
		content = BinaryPlaceholder
	default:
		data, err := os.ReadFile(p)
		if err != nil {
			content = UnreadablePlaceholder
		} else {
			content = string(data)
		}
	}
	block := header + "\nContent: " + content
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	return block
}

func (g *Generator) rangeContent(p string, sel []ranges.Range) string {
	data, err := os.ReadFile(p)
	if err != nil {
		return UnreadablePlaceholder
	}
	lines := stats.SplitLines(string(data))
	var picked []string
	for _, r := range sel {
		for i := r.Start; i <= r.End && i <= len(lines); i++ {
			picked = append(picked, lines[i-1])
		}
	}
	return strings.Join(picked, "\n")
}
