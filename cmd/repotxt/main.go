package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Vasysik/repotxt/internal/config"
	"github.com/Vasysik/repotxt/internal/engine"
	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/ranges"
	"github.com/Vasysik/repotxt/internal/session"
	"github.com/Vasysik/repotxt/internal/stats"
)

var (
	workspaceDir string
	profileName  string
	sessionDir   string
	verbose      bool

	aiReport    bool
	toFile      bool
	fileName    string
	unsafeWrite bool
	printFlag   bool
	copyFlag    bool
	sshFlag     bool

	tokenModel string
	lineSpec   string
)

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openEngine loads the workspace configuration and session state for dir
// and returns the running engine.
func openEngine(dir string) (*engine.Engine, *config.Config, error) {
	cfg, err := config.LoadWorkspace(dir, profileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if aiReport {
		cfg.AIReport = true
	}

	log := newLogger()

	sd := sessionDir
	if sd == "" {
		sd, err = session.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate session directory: %w", err)
		}
	}
	store := session.NewStore(sd, pathutil.CanonicalDir(dir))

	eng, err := engine.New(dir, cfg, store, log)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

func argDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if workspaceDir != "" {
		return workspaceDir
	}
	return "."
}

// isReportOutput guards --to-file against clobbering arbitrary files: only
// files that look like a previous repotxt report are overwritten without
// --unsafe.
func isReportOutput(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	s := string(content)
	return strings.HasPrefix(s, "Folder Structure: ") ||
		strings.Contains(s, "\nFolder Structure: "), nil
}

var rootCmd = &cobra.Command{
	Use:   "repotxt [directory]",
	Short: "repotxt flattens a curated directory tree into a single text report",
	Long: `repotxt curates a directory tree through automatic exclusion rules
(glob patterns, ignore files, binary extensions) and manual per-path
overrides, then flattens the visible part into one text report: a folder
structure listing followed by every included file's contents. Manual
toggles and line selections persist per workspace between invocations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, err := openEngine(argDir(args))
		if err != nil {
			return err
		}
		defer eng.Close()

		rep := eng.GenerateReport()

		if toFile {
			if _, err := os.Stat(fileName); err == nil && !unsafeWrite {
				isReport, err := isReportOutput(fileName)
				if err != nil {
					return fmt.Errorf("failed to check existing file: %w", err)
				}
				if !isReport {
					return fmt.Errorf("refusing to overwrite %s: file exists and doesn't appear to be a repotxt report. Use --unsafe to override", fileName)
				}
			}
			if err := os.WriteFile(fileName, []byte(rep), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report written to: %s\n", fileName)
			return nil
		}

		mode, err := resolveOutputMode(cfg.Output, printFlag, copyFlag, sshFlag)
		if err != nil {
			return err
		}
		switch mode {
		case outputModeCopy:
			if err := copyToClipboard(rep); err != nil {
				return err
			}
			fmt.Println("Report copied to clipboard")
		case outputModeSSHCopy:
			if err := copyToOSC52(rep); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Report copied via OSC 52")
		default:
			fmt.Print(rep)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Print line/char/file counts for a path or the whole workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		var st stats.Stats
		if len(args) == 0 {
			st = eng.WorkspaceStats()
			fmt.Printf("lines: %d\nchars: %d\nfiles: %d\n", st.Lines, st.Chars, st.Files)
			return nil
		}
		st = eng.Stats(args[0])
		fmt.Printf("lines: %d\nchars: %d\n", st.Lines, st.Chars)
		if pathutil.IsDir(eng.Canonicalize(args[0])) {
			fmt.Printf("files: %d\n", st.Files)
		}
		return nil
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens [directory]",
	Short: "Count report tokens for an LLM model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine(argDir(args))
		if err != nil {
			return err
		}
		defer eng.Close()

		n, err := stats.CountTokens(eng.GenerateReport(), tokenModel)
		if err != nil {
			return err
		}
		fmt.Printf("%d\n", n)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <path>...",
	Short: "Flip the manual include/exclude state of one or more paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.ToggleExcludeMultiple(args); err != nil {
			return err
		}
		for _, p := range args {
			state := "included"
			if eng.EffectivelyExcluded(p) {
				state = "excluded"
			}
			fmt.Printf("%s: %s\n", p, state)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all manual overrides and line selections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()
		return eng.ResetExclusions()
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <file>",
	Short: "Add line ranges to a file's partial selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := ranges.Parse(lineSpec)
		if err != nil {
			return err
		}
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.AddRanges(args[0], sel); err != nil {
			return err
		}
		fmt.Printf("%s: lines %s\n", args[0], ranges.Format(eng.Ranges(args[0])))
		return nil
	},
}

var deselectCmd = &cobra.Command{
	Use:   "deselect <file>",
	Short: "Remove line ranges from a file's partial selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := ranges.Parse(lineSpec)
		if err != nil {
			return err
		}
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.RemoveRanges(args[0], sel); err != nil {
			return err
		}
		remaining := eng.Ranges(args[0])
		if len(remaining) == 0 {
			fmt.Printf("%s: no selection\n", args[0])
			return nil
		}
		fmt.Printf("%s: lines %s\n", args[0], ranges.Format(remaining))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [file]",
	Short: "Clear a file's line selection, or all selections",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine(workspaceDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		if len(args) == 0 {
			return eng.ClearAllRanges()
		}
		return eng.ClearRanges(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "dir", "C", ".", "Workspace directory")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Configuration profile to apply")
	rootCmd.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "Directory holding persisted session state")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().BoolVar(&aiReport, "ai", false, "Prepend the AI prompt preamble to the report")
	rootCmd.Flags().BoolVarP(&toFile, "to-file", "f", false, "Write the report to a file instead of stdout")
	rootCmd.Flags().StringVarP(&fileName, "file-name", "n", "./repotxt.txt", "Output file name (only used with --to-file)")
	rootCmd.Flags().BoolVar(&unsafeWrite, "unsafe", false, "Allow overwriting files that are not repotxt reports")
	rootCmd.Flags().BoolVar(&printFlag, "print", false, "Print the report to stdout")
	rootCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the report to the system clipboard")
	rootCmd.Flags().BoolVar(&sshFlag, "ssh-copy", false, "Copy the report via an OSC 52 escape sequence")

	tokensCmd.Flags().StringVarP(&tokenModel, "model", "m", stats.DefaultTokenModel, "Model whose tokenizer to use")

	selectCmd.Flags().StringVarP(&lineSpec, "lines", "l", "", "Line ranges, e.g. 1-3,5-7")
	_ = selectCmd.MarkFlagRequired("lines")
	deselectCmd.Flags().StringVarP(&lineSpec, "lines", "l", "", "Line ranges, e.g. 1-3,5-7")
	_ = deselectCmd.MarkFlagRequired("lines")

	rootCmd.AddCommand(statsCmd, tokensCmd, toggleCmd, resetCmd, selectCmd, deselectCmd, clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
