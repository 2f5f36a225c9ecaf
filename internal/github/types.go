package github

import (
	"fmt"
	"strings"
)

// IssueRequest is the body for POST /repos/{owner}/{repo}/issues.
type IssueRequest struct {
	Title     string   `json:"title"               yaml:"title"`
	Body      string   `json:"body"                yaml:"body"`
	Assignee  string   `json:"assignee,omitempty"  yaml:"assignee,omitempty"`
	Milestone *int     `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	Labels    []string `json:"labels,omitempty"    yaml:"labels,omitempty"`
}

// Issue is the subset of the issue resource we read back. Number and Title
// are pointers so a response lacking them is distinguishable from zero values.
type Issue struct {
	Number  *int    `json:"number"`
	Title   *string `json:"title"`
	State   string  `json:"state,omitempty"`
	HTMLURL string  `json:"html_url,omitempty"`
}

// MilestoneRequest is the body for POST /repos/{owner}/{repo}/milestones.
type MilestoneRequest struct {
	Title       string `json:"title"`
	State       string `json:"state"`
	Description string `json:"description"`
	DueOn       string `json:"due_on,omitempty"`
}

// Milestone is the subset of the milestone resource we read back.
type Milestone struct {
	Number *int   `json:"number"`
	Title  string `json:"title"`
}

// CommentRequest is the body for POST /repos/{owner}/{repo}/issues/{n}/comments.
type CommentRequest struct {
	Body string `json:"body" yaml:"body"`
}

// Comment is the subset of the comment resource we read back.
type Comment struct {
	ID      *int64 `json:"id"`
	HTMLURL string `json:"html_url,omitempty"`
}

// StateRequest is the body for PATCH /repos/{owner}/{repo}/issues/{n}.
type StateRequest struct {
	State string `json:"state"`
}

// LabelRequest is the body for POST /repos/{owner}/{repo}/labels.
type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Label is the subset of the label resource we read back.
type Label struct {
	URL  *string `json:"url"`
	Name string  `json:"name"`
}

// APIError is a non-2xx GitHub response.
type APIError struct {
	StatusCode int           `json:"-"`
	Message    string        `json:"message"`
	Errors     []ErrorDetail `json:"errors"`
	Body       string        `json:"-"`
}

// ErrorDetail is one entry of the "errors" array of a validation failure.
type ErrorDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		if e.Message != "" {
			return fmt.Sprintf("GitHub API returned %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("GitHub API returned %d: %s", e.StatusCode, e.Body)
	}
	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Message != "" {
			details = append(details, d.Message)
			continue
		}
		details = append(details, fmt.Sprintf("%s.%s %s", d.Resource, d.Field, d.Code))
	}
	return fmt.Sprintf("GitHub API returned %d: %s (%s)", e.StatusCode, e.Message, strings.Join(details, "; "))
}
