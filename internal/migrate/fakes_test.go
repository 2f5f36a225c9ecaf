package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
)

// fakeTarget imitates GitHub: issues are numbered sequentially from 1.
type fakeTarget struct {
	issues     []github.IssueRequest
	comments   map[int][]string
	closed     []int
	milestones []github.MilestoneRequest

	// failIssues makes the next n CreateIssue calls fail.
	failIssues int
	// failAllIssues makes every CreateIssue call fail.
	failAllIssues bool
	issueAttempts int
	// failMilestones lists titles that can never be created.
	failMilestones map[string]bool
	failComments   bool
	failClose      bool

	// issueLatency delays every CreateIssue response.
	issueLatency time.Duration
	// issueStarted and issueDone hold the time each CreateIssue call began
	// and returned.
	issueStarted []time.Time
	issueDone    []time.Time

	// calls records the order of write operations.
	calls []string
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{comments: make(map[int][]string)}
}

func (f *fakeTarget) CreateMilestone(_ context.Context, p github.MilestoneRequest) (*github.Milestone, []byte, error) {
	if f.failMilestones[p.Title] {
		return nil, []byte(`{"message":"Validation Failed"}`), errors.New("validation failed")
	}
	f.milestones = append(f.milestones, p)
	n := len(f.milestones)
	return &github.Milestone{Number: &n, Title: p.Title}, nil, nil
}

func (f *fakeTarget) CreateIssue(_ context.Context, p github.IssueRequest) (*github.Issue, []byte, error) {
	f.issueStarted = append(f.issueStarted, time.Now())
	if f.issueLatency > 0 {
		time.Sleep(f.issueLatency)
	}
	defer func() { f.issueDone = append(f.issueDone, time.Now()) }()

	f.issueAttempts++
	if f.failAllIssues || f.failIssues > 0 {
		if f.failIssues > 0 {
			f.failIssues--
		}
		// A 2xx without the fields we need counts as a failure too.
		return &github.Issue{}, []byte(`{"message":"Server Error"}`), nil
	}
	f.issues = append(f.issues, p)
	n := len(f.issues)
	title := p.Title
	f.calls = append(f.calls, fmt.Sprintf("issue %d", n))
	return &github.Issue{Number: &n, Title: &title}, nil, nil
}

func (f *fakeTarget) CreateComment(_ context.Context, number int, p github.CommentRequest) (*github.Comment, []byte, error) {
	f.calls = append(f.calls, fmt.Sprintf("comment %d", number))
	if f.failComments {
		return nil, nil, errors.New("boom")
	}
	f.comments[number] = append(f.comments[number], p.Body)
	id := int64(len(f.comments[number]))
	return &github.Comment{ID: &id}, nil, nil
}

func (f *fakeTarget) UpdateIssueState(_ context.Context, number int, state string) ([]byte, error) {
	f.calls = append(f.calls, fmt.Sprintf("close %d", number))
	if f.failClose {
		return nil, errors.New("boom")
	}
	if state == "closed" {
		f.closed = append(f.closed, number)
	}
	return nil, nil
}

func (f *fakeTarget) commentsContaining(number int, substr string) int {
	n := 0
	for _, c := range f.comments[number] {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

// fakeSource serves tickets from memory.
type fakeSource struct {
	tickets    map[int]*lighthouse.Ticket
	milestones []lighthouse.Milestone
	files      map[string]string
	fetched    []int
}

func (f *fakeSource) TicketNumbers(context.Context) ([]int, error) {
	var numbers []int
	for n := range f.tickets {
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func (f *fakeSource) Ticket(_ context.Context, number int) (*lighthouse.Ticket, error) {
	f.fetched = append(f.fetched, number)
	return f.tickets[number], nil
}

func (f *fakeSource) Milestones(context.Context) ([]lighthouse.Milestone, error) {
	return f.milestones, nil
}

func (f *fakeSource) Attachment(_ context.Context, url string) ([]byte, error) {
	body, ok := f.files[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func strp(s string) *string { return &s }

func intp(n int) *int { return &n }
