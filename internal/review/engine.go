package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siftlab/sift/internal/chunk"
	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/internal/diff"
	"github.com/siftlab/sift/internal/providers"
	"github.com/siftlab/sift/internal/redact"
	"github.com/siftlab/sift/internal/skill"
	"github.com/siftlab/sift/internal/suggest"
)

const (
	toolName    = "sift"
	toolVersion = "1.0"

	responseMaxTokens = 8192
)

// Run executes one review. The diff is parsed, packed into the token
// budget, sent to the provider, and the response normalized. A diff with
// no reviewable content yields an empty report, not an error.
func Run(ctx context.Context, in Input, cfg config.Config, caller providers.Caller) (*Report, error) {
	start := time.Now()

	if strings.TrimSpace(in.Diff) == "" {
		return emptyReport(in, cfg, caller, PlanInfo{BudgetTokens: cfg.BudgetTokens}, start), nil
	}

	files, skipped, err := diff.Parse(in.Diff)
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	opts := chunk.Options{
		BudgetTokens:    cfg.BudgetTokens,
		ExcludePatterns: cfg.ExcludePatterns,
	}
	if in.Incremental {
		opts.Incremental = true
		if strings.TrimSpace(in.SinceDiff) != "" {
			if sinceFiles, _, serr := diff.Parse(in.SinceDiff); serr == nil {
				opts.Since = sinceFiles
			}
		}
	}
	plan := chunk.Select(files, opts)

	pinfo := planInfo(plan, cfg.BudgetTokens)
	for _, s := range skipped {
		pinfo.Omitted = append(pinfo.Omitted, OmissionInfo{Path: s.Path, Reason: "malformed_section"})
	}

	if len(plan.IncludedFiles) == 0 {
		return emptyReport(in, cfg, caller, pinfo, start), nil
	}

	sk, err := skill.Resolve(cfg.Skill, cfg.SkillsDir)
	if err != nil {
		return nil, fmt.Errorf("resolving skill: %w", err)
	}

	diffText := RenderPlan(plan)
	if cfg.Privacy.RedactSecrets {
		diffText = redact.DiffText(diffText)
	}

	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = suggest.AutoLimit(len(plan.IncludedFiles))
	}

	system := SystemPrompt(sk)
	user := BuildUserPrompt(plan, in.Title, diffText, maxSuggestions)

	llmStart := time.Now()
	resp, err := caller.Call(ctx, providers.CallRequest{
		System:    system,
		User:      user,
		MaxTokens: responseMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}
	tokensUsed := resp.TokensUsed

	payload, schemaErrs, perr := suggest.Parse(resp.Content)
	if perr != nil {
		// One repair pass: hand the broken output back with the error.
		repair := fmt.Sprintf(
			"Your previous response was not valid YAML. The error was: %s\n\nFix it and respond with ONLY the fenced YAML block.\n\nYour previous response was:\n%s",
			perr.Error(), resp.Content,
		)
		resp2, err2 := caller.Call(ctx, providers.CallRequest{
			System:    system,
			User:      repair,
			MaxTokens: responseMaxTokens,
		})
		if err2 != nil {
			return nil, fmt.Errorf("repair pass failed: %w (original error: %v)", err2, perr)
		}
		tokensUsed += resp2.TokensUsed
		payload, schemaErrs, perr = suggest.Parse(resp2.Content)
		if perr != nil {
			return nil, fmt.Errorf("response invalid after repair: %w", perr)
		}
	}
	llmMs := time.Since(llmStart).Milliseconds()

	suggestions := suggest.Validate(payload.Suggestions, plan)
	suggestions = suggest.Dedupe(suggestions)
	filter := suggest.CategoryFilter{
		Bug:         cfg.Categories.Bug,
		Performance: cfg.Categories.Performance,
		Security:    cfg.Categories.Security,
	}
	suggestions = filter.Apply(suggestions)
	if cfg.SeverityFloor != "" {
		if floor, ok := suggest.ParseSeverity(cfg.SeverityFloor); ok {
			suggestions = suggest.ApplySeverityFloor(suggestions, floor)
		}
	}
	suggestions = suggest.RankAndLimit(suggestions, maxSuggestions)
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}

	return &Report{
		Tool:     toolName,
		Version:  toolVersion,
		RunID:    uuid.NewString(),
		Provider: caller.Name(),
		Model:    cfg.Model,
		Repo:     in.Repo,
		Inputs:   InputInfo{Mode: in.Mode, Range: in.Range},
		Plan:     pinfo,
		Result: suggest.ReviewResult{
			OverviewSummary: payload.Summary,
			Score:           payload.Score,
			FileSummaries:   payload.FileSummaries,
			Suggestions:     suggestions,
		},
		DroppedEntries: len(schemaErrs),
		TokensUsed:     tokensUsed,
		Timing: Timing{
			LLMMs:   llmMs,
			TotalMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

func emptyReport(in Input, cfg config.Config, caller providers.Caller, pinfo PlanInfo, start time.Time) *Report {
	return &Report{
		Tool:     toolName,
		Version:  toolVersion,
		RunID:    uuid.NewString(),
		Provider: caller.Name(),
		Model:    cfg.Model,
		Repo:     in.Repo,
		Inputs:   InputInfo{Mode: in.Mode, Range: in.Range},
		Plan:     pinfo,
		Result: suggest.ReviewResult{
			OverviewSummary: "No reviewable changes.",
			Suggestions:     []suggest.Suggestion{},
		},
		Timing: Timing{TotalMs: time.Since(start).Milliseconds()},
	}
}
