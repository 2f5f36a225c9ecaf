package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dt-pm-tools/lh2gh/internal/config"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client is a GitHub REST API client scoped to one repository.
type Client struct {
	baseURL    string
	authHeader string
	repoPath   string
	httpClient *http.Client
}

// NewClient creates a new GitHub client from the given config.
func NewClient(cfg config.GitHubConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "token " + cfg.Token,
		repoPath:   fmt.Sprintf("/repos/%s/%s", url.PathEscape(cfg.Owner()), url.PathEscape(cfg.Repo)),
		httpClient: &http.Client{},
	}
}

// CreateMilestone creates a milestone. The raw response body is returned
// alongside the decoded value for diagnostics.
func (c *Client) CreateMilestone(ctx context.Context, payload MilestoneRequest) (*Milestone, []byte, error) {
	var m Milestone
	raw, err := c.send(ctx, http.MethodPost, "/milestones", payload, &m)
	if err != nil {
		return nil, raw, err
	}
	return &m, raw, nil
}

// CreateIssue opens an issue.
func (c *Client) CreateIssue(ctx context.Context, payload IssueRequest) (*Issue, []byte, error) {
	var issue Issue
	raw, err := c.send(ctx, http.MethodPost, "/issues", payload, &issue)
	if err != nil {
		return nil, raw, err
	}
	return &issue, raw, nil
}

// CreateComment appends a comment to an issue.
func (c *Client) CreateComment(ctx context.Context, number int, payload CommentRequest) (*Comment, []byte, error) {
	var comment Comment
	raw, err := c.send(ctx, http.MethodPost, fmt.Sprintf("/issues/%d/comments", number), payload, &comment)
	if err != nil {
		return nil, raw, err
	}
	return &comment, raw, nil
}

// UpdateIssueState sets an issue's state ("open" or "closed").
func (c *Client) UpdateIssueState(ctx context.Context, number int, state string) ([]byte, error) {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/issues/%d", number), StateRequest{State: state}, nil)
}

// CreateLabel creates a repository label.
func (c *Client) CreateLabel(ctx context.Context, payload LabelRequest) (*Label, []byte, error) {
	var label Label
	raw, err := c.send(ctx, http.MethodPost, "/labels", payload, &label)
	if err != nil {
		return nil, raw, err
	}
	return &label, raw, nil
}

// send issues a JSON request against the repository and decodes a 2xx body
// into out when out is non-nil. Non-2xx responses come back as *APIError.
func (c *Client) send(ctx context.Context, method, path string, payload any, out any) ([]byte, error) {
	u := c.baseURL + c.repoPath + path

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	slog.Debug("github request", "method", method, "url", u, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		_ = json.Unmarshal(body, apiErr)
		slog.Warn("GitHub API error", "method", method, "url", u, "request", string(data), "response", string(body))
		return body, apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return body, fmt.Errorf("decoding response: %w", err)
		}
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
}
