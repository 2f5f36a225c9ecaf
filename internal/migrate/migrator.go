// Package migrate moves a Lighthouse project into GitHub Issues, one ticket
// at a time, keeping ticket numbers equal to issue numbers.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
)

// ErrTicketMissing is returned when Lighthouse lists a ticket but returns no
// detail for it.
var ErrTicketMissing = errors.New("ticket detail missing")

// Source is the read side of the Lighthouse API used by the migration.
type Source interface {
	Fetcher
	TicketNumbers(ctx context.Context) ([]int, error)
	Ticket(ctx context.Context, number int) (*lighthouse.Ticket, error)
	Milestones(ctx context.Context) ([]lighthouse.Milestone, error)
}

// Progress receives console progress events.
type Progress interface {
	Info(msg string)
	Section(title string)
	Mark(ok bool)
	EndSection()
	IssueCreated(title string, ticket, issue int)
	PlaceholderCreated(index, issue int)
}

// Options controls a migration run.
type Options struct {
	// StartingTicket is the first slot processed. Values below 1 start at 1.
	StartingTicket int
	// Delay is the pause after each ticket's full processing.
	Delay time.Duration
	// MaxRetries bounds consecutive failed issue creations.
	MaxRetries int
	Mapping    MapperConfig
}

// Report summarizes a run.
type Report struct {
	MilestonesCreated  int
	MilestonesFailed   int
	Tickets            int
	Issues             int
	Placeholders       int
	Comments           int
	CommentsFailed     int
	AttachmentsSkipped int
	Closed             int
	CloseFailed        int
	// LastSlot is the slot being processed when the run stopped.
	LastSlot int
}

// Migrator runs the migration phases in order: milestones, ticket listing,
// then every aligned slot.
type Migrator struct {
	source     Source
	writer     *Writer
	mapper     *Mapper
	milestones *MilestoneMap
	progress   Progress
	opts       Options
}

// New wires a Migrator. The milestone map is created here and shared by
// the writer, which fills it, and the mapper, which reads it.
func New(source Source, target Target, opts Options, progress Progress) *Migrator {
	if progress == nil {
		progress = nopProgress{}
	}
	milestones := NewMilestoneMap()

	return &Migrator{
		source:     source,
		writer:     NewWriter(target, milestones, opts.MaxRetries),
		mapper:     NewMapper(opts.Mapping, milestones),
		milestones: milestones,
		progress:   progress,
		opts:       opts,
	}
}

// Run performs the whole migration. It stops at the first slot whose issue
// cannot be created; Report.LastSlot then names the slot to resume from.
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	var report Report

	if err := m.createMilestones(ctx, &report); err != nil {
		return report, err
	}

	m.progress.Section("Collecting tickets")
	numbers, err := m.source.TicketNumbers(ctx)
	m.progress.EndSection()
	if err != nil {
		return report, fmt.Errorf("listing tickets: %w", err)
	}
	m.progress.Info(fmt.Sprintf("Found %d to migrate.", len(numbers)))

	slots := Align(numbers)
	start := m.opts.StartingTicket
	if start < 1 {
		start = 1
	}

	for i := start; i < len(slots); i++ {
		slot := slots[i]
		report.LastSlot = slot.Index

		if slot.Placeholder {
			number, err := m.writer.CreatePlaceholder(ctx, slot.Index)
			if err != nil {
				return report, err
			}
			report.Placeholders++
			m.checkAlignment(slot.Index, number)
			m.progress.PlaceholderCreated(slot.Index, number)
			continue
		}

		if err := m.migrateTicket(ctx, slot, &report); err != nil {
			return report, err
		}
		if err := m.pause(ctx); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (m *Migrator) createMilestones(ctx context.Context, report *Report) error {
	m.progress.Info("Collecting milestones from Lighthouse...")
	milestones, err := m.source.Milestones(ctx)
	if err != nil {
		return fmt.Errorf("listing milestones: %w", err)
	}

	m.progress.Section("Creating milestones")
	defer m.progress.EndSection()
	for _, ms := range milestones {
		if _, err := m.writer.CreateMilestone(ctx, ms); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			slog.Warn("continuing without milestone", "error", err)
			report.MilestonesFailed++
			m.progress.Mark(false)
			continue
		}
		report.MilestonesCreated++
		m.progress.Mark(true)
	}
	return nil
}

// migrateTicket takes one ticket through issue creation, comments,
// attachments and closing.
func (m *Migrator) migrateTicket(ctx context.Context, slot Slot, report *Report) error {
	ticket, err := m.source.Ticket(ctx, slot.Ticket)
	if err != nil {
		return fmt.Errorf("ticket %d: %w", slot.Ticket, err)
	}
	if ticket == nil {
		return fmt.Errorf("%w: ticket %d", ErrTicketMissing, slot.Ticket)
	}
	report.Tickets++

	number, err := m.writer.CreateIssue(ctx, slot.Index, m.mapper.Issue(ticket))
	if err != nil {
		return err
	}
	report.Issues++
	m.checkAlignment(slot.Index, number)
	m.progress.IssueCreated(ticket.Title, slot.Ticket, number)

	if len(ticket.Versions) > 0 {
		m.progress.Section("  Adding comments")
		for _, v := range ticket.Versions {
			comment, ok := m.mapper.Comment(v)
			if !ok {
				continue
			}
			m.postComment(ctx, number, comment, report)
		}
		m.progress.EndSection()
	}

	if len(ticket.Attachments) > 0 {
		m.progress.Section("  Adding attachments")
		for _, a := range ticket.Attachments {
			comment, result, err := m.mapper.AttachmentComment(ctx, a, m.source)
			switch result {
			case AttachmentInvalid:
				report.AttachmentsSkipped++
				m.progress.Mark(false)
				continue
			case AttachmentEmpty:
				report.AttachmentsSkipped++
				continue
			case AttachmentFailed:
				slog.Warn("attachment skipped", "issue", number, "error", err)
				report.AttachmentsSkipped++
				m.progress.Mark(false)
				continue
			}
			m.postComment(ctx, number, comment, report)
		}
		m.progress.EndSection()
	}

	if ticket.IsClosed() || ticket.State == ReviewState {
		if err := m.writer.CloseIssue(ctx, number); err != nil {
			slog.Warn("close failed", "issue", number, "error", err)
			report.CloseFailed++
		} else {
			report.Closed++
		}
	}

	return nil
}

func (m *Migrator) postComment(ctx context.Context, number int, comment github.CommentRequest, report *Report) {
	err := m.writer.AddComment(ctx, number, comment)
	if err != nil {
		slog.Warn("comment failed", "issue", number, "error", err)
		report.CommentsFailed++
		m.progress.Mark(false)
		return
	}
	report.Comments++
	m.progress.Mark(true)
}

// pause waits out the fixed delay that follows every ticket. Placeholders
// do not pause.
func (m *Migrator) pause(ctx context.Context) error {
	if m.opts.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(m.opts.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// checkAlignment warns when GitHub hands out a number other than the slot's,
// which happens when the repository already had issues.
func (m *Migrator) checkAlignment(slot, issue int) {
	if slot != issue {
		slog.Warn("issue number does not match ticket number", "ticket", slot, "issue", issue)
	}
}

type nopProgress struct{}

func (nopProgress) Info(string)                   {}
func (nopProgress) Section(string)                {}
func (nopProgress) Mark(bool)                     {}
func (nopProgress) EndSection()                   {}
func (nopProgress) IssueCreated(string, int, int) {}
func (nopProgress) PlaceholderCreated(int, int)   {}
