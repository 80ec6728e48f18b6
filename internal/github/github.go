package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a GitHub client. Requires GITHUB_TOKEN.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		token:   strings.TrimSpace(token),
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// PRInfo is the pull request metadata a review needs.
type PRInfo struct {
	Title   string
	HeadSHA string
	BaseRef string
}

// GetPR fetches pull request metadata.
func (c *Client) GetPR(ctx context.Context, owner, repo string, prNumber int) (PRInfo, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
	body, err := c.do(ctx, "GET", url, "application/vnd.github.v3+json", nil)
	if err != nil {
		return PRInfo{}, err
	}

	var raw struct {
		Title string `json:"title"`
		Head  struct {
			SHA string `json:"sha"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PRInfo{}, fmt.Errorf("parsing PR response: %w", err)
	}
	return PRInfo{Title: raw.Title, HeadSHA: raw.Head.SHA, BaseRef: raw.Base.Ref}, nil
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
	body, err := c.do(ctx, "GET", url, "application/vnd.github.v3.diff", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Comment is one issue comment on a pull request.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// ListComments fetches all issue comments on a pull request.
func (c *Client) ListComments(ctx context.Context, owner, repo string, prNumber int) ([]Comment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100", c.apiURL, owner, repo, prNumber)
	body, err := c.do(ctx, "GET", url, "application/vnd.github.v3+json", nil)
	if err != nil {
		return nil, err
	}
	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("parsing comments: %w", err)
	}
	return comments, nil
}

// UpsertReviewComment posts the review body as a PR comment, updating the
// previous sift comment in place when one exists.
func (c *Client) UpsertReviewComment(ctx context.Context, owner, repo string, prNumber int, body string) error {
	comments, err := c.ListComments(ctx, owner, repo, prNumber)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("marshaling comment: %w", err)
	}

	for _, existing := range comments {
		if _, ok := FindSHA(existing.Body); ok {
			url := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", c.apiURL, owner, repo, existing.ID)
			_, err := c.do(ctx, "PATCH", url, "application/vnd.github.v3+json", payload)
			return err
		}
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.apiURL, owner, repo, prNumber)
	_, err = c.do(ctx, "POST", url, "application/vnd.github.v3+json", payload)
	return err
}

// FindLastReviewSHA returns the head SHA recorded by the most recent sift
// comment, if any.
func FindLastReviewSHA(comments []Comment) (string, bool) {
	for i := len(comments) - 1; i >= 0; i-- {
		if sha, ok := FindSHA(comments[i].Body); ok {
			return sha, true
		}
	}
	return "", false
}

var markerRe = regexp.MustCompile(`<!-- sift-review:sha=([0-9a-f]{7,40}) -->`)

// Marker returns the hidden comment marker for a reviewed head SHA.
func Marker(sha string) string {
	return fmt.Sprintf("<!-- sift-review:sha=%s -->", sha)
}

// FindSHA extracts the reviewed head SHA from a comment body.
func FindSHA(body string) (string, bool) {
	m := markerRe.FindStringSubmatch(body)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}

func (c *Client) do(ctx context.Context, method, url, accept string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling GitHub: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == 404:
		return nil, fmt.Errorf("not found: %s", url)
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return nil, fmt.Errorf("authentication failed: %s", string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")
	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
