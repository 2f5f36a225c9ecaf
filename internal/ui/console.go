// Package ui provides console progress output for lh2gh.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dt-pm-tools/lh2gh/internal/migrate"
)

// IsTerminal returns true if f is connected to a terminal (TTY).
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// NO_COLOR disables color, CLICOLOR_FORCE forces it, otherwise TTY detection.
func ShouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal(f)
}

// Console prints migration progress: one marker per item, a line per issue.
type Console struct {
	out  io.Writer
	ok   *color.Color
	bad  *color.Color
	bold *color.Color
	dim  *color.Color
}

// NewConsole writes progress to out, colored when useColor is set.
func NewConsole(out io.Writer, useColor bool) *Console {
	c := &Console{
		out:  out,
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		bold: color.New(color.Bold),
		dim:  color.New(color.FgHiBlack),
	}
	for _, col := range []*color.Color{c.ok, c.bad, c.bold, c.dim} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Info prints a line of text.
func (c *Console) Info(msg string) {
	fmt.Fprintln(c.out, msg)
}

// Section starts a line of progress markers.
func (c *Console) Section(title string) {
	fmt.Fprint(c.out, title)
}

// Mark prints "." for a success and "!" for a failure.
func (c *Console) Mark(ok bool) {
	if ok {
		c.ok.Fprint(c.out, ".")
		return
	}
	c.bad.Fprint(c.out, "!")
}

// EndSection terminates a line of markers.
func (c *Console) EndSection() {
	fmt.Fprintln(c.out)
}

// IssueCreated announces an imported ticket.
func (c *Console) IssueCreated(title string, ticket, issue int) {
	fmt.Fprintf(c.out, "\n%s %s\n", c.bold.Sprintf("%q", title), c.dim.Sprintf("(%d > %d)", ticket, issue))
}

// PlaceholderCreated announces a placeholder for a missing ticket.
func (c *Console) PlaceholderCreated(index, issue int) {
	fmt.Fprintf(c.out, "\n%s\n", c.dim.Sprintf("Removed ticket #%d (%d > %d)", index, index, issue))
}

// Done prints the completion banner and the run summary.
func (c *Console) Done(r migrate.Report) {
	fmt.Fprintf(c.out, "\n\n%s\n\n", c.bold.Sprint("**Done**"))
	c.Summary(r)
}

// Summary prints the counters of a run.
func (c *Console) Summary(r migrate.Report) {
	rows := []struct {
		label string
		value int
	}{
		{"Milestones created", r.MilestonesCreated},
		{"Milestones failed", r.MilestonesFailed},
		{"Issues created", r.Issues},
		{"Placeholders", r.Placeholders},
		{"Comments posted", r.Comments},
		{"Comments failed", r.CommentsFailed},
		{"Attachments skipped", r.AttachmentsSkipped},
		{"Issues closed", r.Closed},
		{"Close failures", r.CloseFailed},
	}
	for _, row := range rows {
		fmt.Fprintf(c.out, "  %-20s %d\n", row.label+":", row.value)
	}
}

// Fatal prints the diagnostic dump for an aborted run. resume is the
// starting ticket that picks the run back up.
func (c *Console) Fatal(err error, resume int) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n%s %v\n", c.bad.Sprint("FAIL:"), err)

	var retryErr *migrate.RetryError
	if errors.As(err, &retryErr) {
		fmt.Fprintf(&b, "\nIssue Data:\n%s\n", retryErr.PayloadJSON())
		response := string(retryErr.Response)
		if response == "" {
			response = "(no response body)"
		}
		fmt.Fprintf(&b, "\nResponse:\n%s\n", response)
	}

	if resume > 0 {
		fmt.Fprintf(&b, "\nResume with: lh2gh --start %d\n", resume)
	}
	b.WriteString("\n")
	fmt.Fprint(c.out, b.String())
}
