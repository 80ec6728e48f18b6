package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siftlab/sift/internal/cache"
	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/internal/gitctx"
	"github.com/siftlab/sift/internal/output"
	"github.com/siftlab/sift/internal/providers"
	"github.com/siftlab/sift/internal/review"
	"github.com/siftlab/sift/internal/suggest"
)

// Shared review flags.
var (
	flagProvider       string
	flagModel          string
	flagFormat         string
	flagOut            string
	flagSkill          string
	flagSkillsDir      string
	flagBudgetTokens   int
	flagMaxSuggestions string
	flagSeverityFloor  string
	flagExclude        string
	flagContextLines   int
	flagTitle          string
	flagSince          string
	flagFailOn         string
	flagNoRedact       bool
	flagNoCache        bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagSkill, "skill", "", "Review skill name")
	cmd.Flags().StringVar(&flagSkillsDir, "skills-dir", "", "Directory with skill overrides")
	cmd.Flags().IntVar(&flagBudgetTokens, "budget-tokens", 0, "Token budget for the diff")
	cmd.Flags().StringVar(&flagMaxSuggestions, "max-suggestions", "", "Maximum suggestions, or \"auto\"")
	cmd.Flags().StringVar(&flagSeverityFloor, "severity-floor", "", "Drop suggestions below this severity")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Extra exclude globs (comma-separated)")
	cmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Context lines in the git diff")
	cmd.Flags().StringVar(&flagTitle, "title", "", "Short description of the change")
	cmd.Flags().StringVar(&flagSince, "since", "", "Only review hunks changed after this ref")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit non-zero when a suggestion meets this severity")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagSkill != "" {
		m["skill"] = flagSkill
	}
	if flagSkillsDir != "" {
		m["skillsDir"] = flagSkillsDir
	}
	if flagBudgetTokens > 0 {
		m["budgetTokens"] = fmt.Sprintf("%d", flagBudgetTokens)
	}
	if flagMaxSuggestions != "" {
		m["maxSuggestions"] = flagMaxSuggestions
	}
	if flagSeverityFloor != "" {
		m["severityFloor"] = flagSeverityFloor
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagNoCache {
		m["noCache"] = "true"
	}
	if flagNoRedact {
		m["noRedact"] = "true"
	}
	return m
}

func buildCaller(cfg config.Config) (providers.Caller, error) {
	caller, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, err
	}
	return cache.WrapCaller(caller, cfg.Model, c), nil
}

func gitOpts() gitctx.Options {
	return gitctx.Options{ContextLines: flagContextLines}
}

// runReview drives the pipeline for an already-collected diff and writes
// the report.
func runReview(in review.Input, cfg config.Config) {
	if flagNoRedact {
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	caller, err := buildCaller(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	report, err := review.Run(context.Background(), in, cfg, caller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if failMeetsThreshold(report, flagFailOn) {
		exitCode = ExitFindings
	}
}

// failMeetsThreshold reports whether any suggestion is at or above the
// fail-on severity.
func failMeetsThreshold(report *review.Report, failOn string) bool {
	if failOn == "" || failOn == "none" {
		return false
	}
	floor, ok := suggest.ParseSeverity(failOn)
	if !ok {
		return false
	}
	for _, s := range report.Result.Suggestions {
		if suggest.SeverityRank(s.Severity) >= suggest.SeverityRank(floor) {
			return true
		}
	}
	return false
}

func localInput(mode, rawDiff, revRange string) review.Input {
	in := review.Input{Diff: rawDiff, Mode: mode, Range: revRange, Title: flagTitle}
	if meta, err := gitctx.Describe(); err == nil {
		in.Repo = review.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
		if in.Title == "" {
			in.Title = meta.Branch
		}
	}
	if flagSince != "" {
		if since, err := gitctx.Since(flagSince, gitOpts()); err == nil {
			in.Incremental = true
			in.SinceDiff = since
		} else {
			fmt.Fprintf(os.Stderr, "Warning: cannot diff against %s, reviewing all changes: %v\n", flagSince, err)
		}
	}
	return in
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes",
	Long:  "Review code changes with an LLM provider. Use subcommands to pick the diff source.",
}

var reviewLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Review working tree changes against HEAD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		raw, err := gitctx.Working(gitOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(localInput("local", raw, ""), cfg)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		raw, err := gitctx.Staged(gitOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(localInput("staged", raw, ""), cfg)
		return nil
	},
}

var flagMergeBase bool

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		raw, err := gitctx.Range(args[0], flagMergeBase, gitOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(localInput("range", raw, args[0]), cfg)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewLocalCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewPRCmd)

	for _, cmd := range []*cobra.Command{
		reviewLocalCmd,
		reviewStagedCmd,
		reviewRangeCmd,
		reviewPRCmd,
	} {
		addReviewFlags(cmd)
	}

	reviewRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", true, "Use merge base for branch comparisons")
}
