package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dt-pm-tools/lh2gh/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestClient(t *testing.T, status int, response string, got *recorded) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token gh-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.body = map[string]any{}
		_ = json.Unmarshal(data, &got.body)
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	t.Cleanup(srv.Close)
	return NewClient(config.GitHubConfig{
		Login:   "octocat",
		Org:     "acme",
		Token:   "gh-secret",
		Repo:    "widgets",
		BaseURL: srv.URL,
	})
}

func TestCreateIssue(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusCreated, `{"number":7,"title":"Crash","state":"open"}`, &got)

	milestone := 3
	issue, raw, err := c.CreateIssue(context.Background(), IssueRequest{
		Title:     "Crash",
		Body:      "body",
		Milestone: &milestone,
		Labels:    []string{"lighthouse", "open"},
	})
	require.NoError(t, err)
	require.NotNil(t, issue.Number)
	assert.Equal(t, 7, *issue.Number)
	assert.Contains(t, string(raw), `"number":7`)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/repos/acme/widgets/issues", got.path)
	assert.Equal(t, float64(3), got.body["milestone"])
	assert.NotContains(t, got.body, "assignee")
}

func TestCreateIssueAPIError(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusUnprocessableEntity,
		`{"message":"Validation Failed","errors":[{"resource":"Issue","field":"assignee","code":"invalid"}]}`, &got)

	issue, raw, err := c.CreateIssue(context.Background(), IssueRequest{Title: "x"})
	assert.Nil(t, issue)
	assert.Contains(t, string(raw), "Validation Failed")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Issue.assignee invalid")
}

func TestCreateMilestoneOmitsEmptyDueDate(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusCreated, `{"number":2,"title":"1.0"}`, &got)

	m, _, err := c.CreateMilestone(context.Background(), MilestoneRequest{Title: "1.0", State: "closed"})
	require.NoError(t, err)
	require.NotNil(t, m.Number)
	assert.Equal(t, 2, *m.Number)
	assert.Equal(t, "/repos/acme/widgets/milestones", got.path)
	assert.NotContains(t, got.body, "due_on")
	assert.Equal(t, "closed", got.body["state"])
}

func TestCreateComment(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusCreated, `{"id":99}`, &got)

	_, _, err := c.CreateComment(context.Background(), 5, CommentRequest{Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/repos/acme/widgets/issues/5/comments", got.path)
	assert.Equal(t, "hi", got.body["body"])
}

func TestUpdateIssueState(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusOK, `{"number":5,"state":"closed"}`, &got)

	_, err := c.UpdateIssueState(context.Background(), 5, "closed")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/repos/acme/widgets/issues/5", got.path)
	assert.Equal(t, "closed", got.body["state"])
}

func TestCreateLabel(t *testing.T) {
	var got recorded
	c := newTestClient(t, http.StatusCreated, `{"url":"https://api.github.com/repos/acme/widgets/labels/bug","name":"bug"}`, &got)

	label, _, err := c.CreateLabel(context.Background(), LabelRequest{Name: "bug", Color: "FFFFFF"})
	require.NoError(t, err)
	require.NotNil(t, label.URL)
	assert.Equal(t, "FFFFFF", got.body["color"])
}

func TestOwnerFallsBackToLogin(t *testing.T) {
	c := NewClient(config.GitHubConfig{Login: "octocat", Repo: "widgets"})
	assert.Equal(t, "/repos/octocat/widgets", c.repoPath)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
