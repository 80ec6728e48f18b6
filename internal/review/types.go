package review

import (
	"github.com/siftlab/sift/internal/chunk"
	"github.com/siftlab/sift/internal/suggest"
)

// Input carries everything the engine needs for one review.
type Input struct {
	// Diff is the raw unified diff under review.
	Diff string
	// SinceDiff narrows an incremental review to hunks changed after an
	// earlier reviewed commit. Empty means full review.
	SinceDiff   string
	Incremental bool
	// Title is a short human description of the change (PR title, branch).
	Title string
	Mode  string
	Range string
	Repo  RepoInfo
}

// RepoInfo identifies the reviewed repository.
type RepoInfo struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// InputInfo records how the diff was obtained.
type InputInfo struct {
	Mode  string `json:"mode"`
	Range string `json:"range,omitempty"`
}

// OmissionInfo is one file left out of the review and why.
type OmissionInfo struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// PlanInfo summarizes the chunking decision for the report.
type PlanInfo struct {
	FilesReviewed   []string       `json:"filesReviewed"`
	Omitted         []OmissionInfo `json:"omitted,omitempty"`
	EstimatedTokens int            `json:"estimatedTokens"`
	BudgetTokens    int            `json:"budgetTokens"`
	Truncated       bool           `json:"truncated,omitempty"`
}

// Timing records where the wall clock went.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the complete outcome of one review run.
type Report struct {
	Tool     string               `json:"tool"`
	Version  string               `json:"version"`
	RunID    string               `json:"runId"`
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Repo     RepoInfo             `json:"repo"`
	Inputs   InputInfo            `json:"inputs"`
	Plan     PlanInfo             `json:"plan"`
	Result   suggest.ReviewResult `json:"result"`
	// DroppedEntries counts model output entries discarded for schema
	// violations.
	DroppedEntries int    `json:"droppedEntries,omitempty"`
	TokensUsed     int    `json:"tokensUsed,omitempty"`
	Timing         Timing `json:"timing"`
}

func planInfo(p chunk.Plan, budget int) PlanInfo {
	info := PlanInfo{
		EstimatedTokens: p.EstimatedTokens,
		BudgetTokens:    budget,
		Truncated:       p.Truncated,
	}
	for _, f := range p.IncludedFiles {
		info.FilesReviewed = append(info.FilesReviewed, f.Path)
	}
	for _, o := range p.Omitted {
		info.Omitted = append(info.Omitted, OmissionInfo{Path: o.Path, Reason: string(o.Reason)})
	}
	return info
}
