package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/internal/gitctx"
	"github.com/siftlab/sift/internal/github"
	"github.com/siftlab/sift/internal/output"
	"github.com/siftlab/sift/internal/providers"
	"github.com/siftlab/sift/internal/review"
)

var (
	flagRepo    string
	flagPublish bool
)

var reviewPRCmd = &cobra.Command{
	Use:   "pr <number>",
	Short: "Review a GitHub pull request",
	Long: `Review a GitHub pull request by number. The repository is detected from
the origin remote unless --repo owner/name is given. With --publish the
review is posted (or updated) as a single PR comment; repeated runs on
the same PR review only hunks changed since the last published review.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid PR number %q", args[0])
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		client, err := github.NewClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		owner, name, err := resolveRepo(flagRepo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runPRReview(cmd.Context(), client, cfg, owner, name, number)
		return nil
	},
}

func init() {
	reviewPRCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/name (default: detect from origin)")
	reviewPRCmd.Flags().BoolVar(&flagPublish, "publish", false, "Publish the review as a PR comment")
}

// resolveRepo picks the owner/name pair from the --repo flag or, failing
// that, from the origin remote of the current repository.
func resolveRepo(flag string) (string, string, error) {
	if flag != "" {
		parts := strings.Split(flag, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid --repo value %q (want owner/name)", flag)
		}
		return parts[0], parts[1], nil
	}
	return github.DetectRepo()
}

func runPRReview(ctx context.Context, client *github.Client, cfg config.Config, owner, name string, number int) {
	pr, err := client.GetPR(ctx, owner, name, number)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching PR: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	rawDiff, err := client.GetPRDiff(ctx, owner, name, number)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching PR diff: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	in := review.Input{
		Diff:  rawDiff,
		Mode:  "pr",
		Range: fmt.Sprintf("%s/%s#%d", owner, name, number),
		Title: pr.Title,
		Repo:  review.RepoInfo{Head: pr.HeadSHA},
	}

	// When a previous review comment exists for an older head, narrow the
	// review to hunks touched since that commit.
	comments, err := client.ListComments(ctx, owner, name, number)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot list PR comments: %v\n", err)
	} else if lastSHA, ok := github.FindLastReviewSHA(comments); ok && lastSHA != pr.HeadSHA {
		if since, err := gitctx.Since(lastSHA, gitOpts()); err == nil {
			in.Incremental = true
			in.SinceDiff = since
		} else {
			fmt.Fprintf(os.Stderr, "Warning: cannot diff against %s, reviewing the full PR: %v\n", lastSHA, err)
		}
	}

	caller, err := buildCaller(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	report, err := review.Run(ctx, in, cfg, caller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	if flagPublish {
		if err := publishReport(ctx, client, report, owner, name, number, pr.HeadSHA); err != nil {
			fmt.Fprintf(os.Stderr, "Error publishing review: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		fmt.Fprintf(os.Stdout, "Published review comment for %s/%s#%d (%s)\n", owner, name, number, shortSHA(pr.HeadSHA))
	} else {
		if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
	}

	if failMeetsThreshold(report, flagFailOn) {
		exitCode = ExitFindings
	}
}

// publishReport renders the report as markdown and upserts it as a single
// marker-tagged PR comment.
func publishReport(ctx context.Context, client *github.Client, report *review.Report, owner, name string, number int, headSHA string) error {
	var buf bytes.Buffer
	if err := (&output.MarkdownWriter{}).Write(&buf, report); err != nil {
		return err
	}
	body := github.Marker(headSHA) + "\n" + buf.String()
	return client.UpsertReviewComment(ctx, owner, name, number, body)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
