package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/markdown"
)

// DefaultMaxRetries bounds consecutive failed attempts to create an issue.
const DefaultMaxRetries = 5

// Placeholder issue text.
const (
	placeholderTitle = "Removed Ticket #%d at " + markdown.Source
	placeholderBody  = "Nothing to see here. Move along."
)

// ErrMilestoneFailed is returned when a milestone could not be created.
// Tickets referencing it are created without a milestone.
var ErrMilestoneFailed = errors.New("milestone not created")

// Target is the write side of the GitHub API used by the migration.
type Target interface {
	CreateMilestone(ctx context.Context, payload github.MilestoneRequest) (*github.Milestone, []byte, error)
	CreateIssue(ctx context.Context, payload github.IssueRequest) (*github.Issue, []byte, error)
	CreateComment(ctx context.Context, number int, payload github.CommentRequest) (*github.Comment, []byte, error)
	UpdateIssueState(ctx context.Context, number int, state string) ([]byte, error)
}

// RetryError reports an issue that could not be created within the retry
// bound. The migration cannot continue past it without breaking numbering.
type RetryError struct {
	Slot     int
	Attempts int
	Payload  github.IssueRequest
	Response []byte
	Err      error
}

func (e *RetryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not create issue for ticket %d after %d attempts: %v", e.Slot, e.Attempts, e.Err)
	}
	return fmt.Sprintf("could not create issue for ticket %d after %d attempts", e.Slot, e.Attempts)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// PayloadJSON renders the attempted request for the diagnostic dump.
func (e *RetryError) PayloadJSON() string {
	data, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", e.Payload)
	}
	return string(data)
}

// Writer creates milestones, issues and comments on GitHub.
type Writer struct {
	target     Target
	milestones *MilestoneMap
	maxRetries int
}

// NewWriter returns a Writer that records created milestones in milestones.
func NewWriter(target Target, milestones *MilestoneMap, maxRetries int) *Writer {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &Writer{
		target:     target,
		milestones: milestones,
		maxRetries: maxRetries,
	}
}

// CreateMilestone creates the GitHub counterpart of a Lighthouse milestone
// and records it. Failure is reported as ErrMilestoneFailed.
func (w *Writer) CreateMilestone(ctx context.Context, m lighthouse.Milestone) (int, error) {
	state := "closed"
	if m.OpenTicketCount != nil && *m.OpenTicketCount > 0 {
		state = "open"
	}
	payload := github.MilestoneRequest{
		Title:       m.Title,
		State:       state,
		Description: m.Goals,
	}
	if m.DueOn != nil && *m.DueOn != "" {
		payload.DueOn = *m.DueOn
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		created, raw, err := w.target.CreateMilestone(ctx, payload)
		if err == nil && created != nil && created.Number != nil {
			w.milestones.Record(m.ID, *created.Number, m.Title)
			return *created.Number, nil
		}
		lastErr = attemptError(err, raw)
		slog.Warn("milestone creation failed", "milestone", m.Title, "attempt", attempt, "error", lastErr)
	}
	return 0, fmt.Errorf("%w: %q: %v", ErrMilestoneFailed, m.Title, lastErr)
}

// CreateIssue posts an issue, retrying the identical payload until GitHub
// answers with a number and title. slot identifies the ticket in errors.
func (w *Writer) CreateIssue(ctx context.Context, slot int, payload github.IssueRequest) (int, error) {
	var (
		lastErr error
		lastRaw []byte
	)
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		issue, raw, err := w.target.CreateIssue(ctx, payload)
		if err == nil && issue != nil && issue.Number != nil && issue.Title != nil {
			return *issue.Number, nil
		}
		lastErr, lastRaw = attemptError(err, raw), raw
		slog.Warn("issue creation failed", "ticket", slot, "attempt", attempt, "error", lastErr)
	}
	return 0, &RetryError{
		Slot:     slot,
		Attempts: w.maxRetries,
		Payload:  payload,
		Response: lastRaw,
		Err:      lastErr,
	}
}

// CreatePlaceholder fills the numbering gap left by a deleted ticket with a
// closed dummy issue.
func (w *Writer) CreatePlaceholder(ctx context.Context, index int) (int, error) {
	payload := github.IssueRequest{
		Title: fmt.Sprintf(placeholderTitle, index),
		Body:  placeholderBody,
	}
	number, err := w.CreateIssue(ctx, index, payload)
	if err != nil {
		return 0, err
	}
	if err := w.CloseIssue(ctx, number); err != nil {
		slog.Warn("closing placeholder failed", "issue", number, "error", err)
	}
	return number, nil
}

// CloseIssue closes an issue. The response is not inspected beyond
// transport and HTTP status errors.
func (w *Writer) CloseIssue(ctx context.Context, number int) error {
	if _, err := w.target.UpdateIssueState(ctx, number, "closed"); err != nil {
		return fmt.Errorf("closing issue %d: %w", number, err)
	}
	return nil
}

// AddComment posts a comment. Failures are not retried.
func (w *Writer) AddComment(ctx context.Context, number int, payload github.CommentRequest) error {
	if _, _, err := w.target.CreateComment(ctx, number, payload); err != nil {
		return fmt.Errorf("commenting on issue %d: %w", number, err)
	}
	return nil
}

// attemptError explains why an attempt did not produce a usable resource.
func attemptError(err error, raw []byte) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected response: %s", markdown.Snippet(raw))
}
