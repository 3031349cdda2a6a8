// Command dircomp recursively compares two directory trees and prints
// the differences.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mnott/dircomp/internal/compare"
	"github.com/mnott/dircomp/internal/config"
	"github.com/mnott/dircomp/internal/criterion"
	"github.com/mnott/dircomp/internal/fsport"
	"github.com/mnott/dircomp/internal/logging"
	"github.com/mnott/dircomp/internal/report"
)

type cliOptions struct {
	configPath     string
	workers        int
	jsonOutput     bool
	noColor        bool
	followSymlinks bool
	showUnchanged  bool
	diffHints      bool
	logDir         string
	verbose        bool
}

var modes = []struct {
	name  string
	short string
}{
	{"size", "Compare files by size"},
	{"hash", "Compare files by content hash (byte-exact, reads every file)"},
	{"mtime", "Compare files by modification time"},
	{"ctime", "Compare files by inode change time"},
	{"atime", "Compare files by last access time"},
	{"exact", "Compare files by size, then content hash"},
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "dircomp",
		Short:        "Compare two directory trees",
		Long:         "Recursively compare two directory trees and report every path that is missing on one side, differs under the chosen criterion, or mismatches in type.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "config.yaml", "Config file path")
	pf.IntVarP(&opts.workers, "workers", "w", 0, "Walk top-level subtrees with this many workers (0 = from config, 1 = serial)")
	pf.BoolVar(&opts.jsonOutput, "json", false, "Emit one JSON object per entry instead of text")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories (cycle-guarded)")
	pf.BoolVar(&opts.showUnchanged, "unchanged", false, "Also report unchanged files")
	pf.BoolVar(&opts.diffHints, "diff-hints", false, "Print a diff command under each changed pair")
	pf.StringVar(&opts.logDir, "log-dir", "", "Write rotating logs into this directory")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging on stderr")

	for _, mode := range modes {
		root.AddCommand(&cobra.Command{
			Use:   mode.name + " <left> <right>",
			Short: mode.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, cmd.Name(), args[0], args[1])
			},
		})
	}
	root.AddCommand(&cobra.Command{
		Use:   "by <criteria> <left> <right>",
		Short: "Compare files by a comma-separated list of criteria (e.g. size,mtime)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1], args[2])
		},
	})
	return root
}

func run(cmd *cobra.Command, opts *cliOptions, mode, left, right string) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logDir := cfg.LogDir
	if opts.logDir != "" {
		logDir = opts.logDir
	}
	logging.Init(logDir, opts.verbose)

	crit, err := criterion.Parse(mode)
	if err != nil {
		return err
	}

	absLeft, err := filepath.Abs(left)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	absRight, err := filepath.Abs(right)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if opts.noColor {
		color.NoColor = true
	}

	workers := opts.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	showUnchanged := opts.showUnchanged || cfg.ShowUnchanged

	var reporter report.Reporter
	if opts.jsonOutput {
		reporter = report.NewJSON(os.Stdout, showUnchanged)
	} else {
		reporter = report.NewText(os.Stdout, absLeft, absRight, report.TextOptions{
			ShowUnchanged: showUnchanged,
			DiffHints:     opts.diffHints,
		})
	}

	compareOpts := compare.Options{
		Criterion:      crit,
		Exclude:        cfg.Exclude,
		FollowSymlinks: opts.followSymlinks || cfg.FollowSymlinks,
		Workers:        workers,
	}

	start := time.Now()
	err = compare.Compare(cmd.Context(), fsport.NewOS(), absLeft, absRight, compareOpts, reporter.Report)
	if err != nil {
		return err
	}
	if err := reporter.Summary(time.Since(start)); err != nil {
		return err
	}

	// Exit with appropriate code
	if reporter.HadErrors() {
		os.Exit(2) // Unreadable subtrees
	}
	if reporter.HasChanges() {
		os.Exit(1) // Differences found
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
