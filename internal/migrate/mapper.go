package migrate

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/markdown"
)

// BulkEditMarker flags history entries produced by Lighthouse bulk edits.
// Those entries are not migrated.
const BulkEditMarker = "[bulk edit]"

// ReviewState is the Lighthouse state that is closed on GitHub alongside
// resolved tickets.
const ReviewState = "review"

const unknownMilestone = "Unknown"

// MapperConfig holds the static mapping rules.
type MapperConfig struct {
	KeepLabels     []string
	MigrationLabel string
	Assignees      map[string]string
	Location       *time.Location
}

// Mapper converts Lighthouse tickets, history and attachments into GitHub
// request payloads.
type Mapper struct {
	keepLabels     []string
	migrationLabel string
	assignees      map[string]string
	loc            *time.Location
	milestones     *MilestoneMap
}

// NewMapper builds a Mapper that resolves milestones through milestones.
func NewMapper(cfg MapperConfig, milestones *MilestoneMap) *Mapper {
	// Assignee names are matched case-insensitively: viper lower-cases map
	// keys read from the config file.
	assignees := make(map[string]string, len(cfg.Assignees))
	for name, login := range cfg.Assignees {
		assignees[strings.ToLower(name)] = login
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Mapper{
		keepLabels:     cfg.KeepLabels,
		migrationLabel: cfg.MigrationLabel,
		assignees:      assignees,
		loc:            loc,
		milestones:     milestones,
	}
}

// Issue maps a ticket to an issue payload.
func (m *Mapper) Issue(t *lighthouse.Ticket) github.IssueRequest {
	citation := markdown.TicketCitation(t.URL, t.CreatorName, markdown.FormatTime(t.CreatedAt, m.loc))

	issue := github.IssueRequest{
		Title: t.Title,
		Body:  markdown.Body(citation, t.OriginalBody),
	}

	if t.AssignedUserName != nil {
		if login, ok := m.assignees[strings.ToLower(*t.AssignedUserName)]; ok {
			issue.Assignee = login
		}
	}

	if t.MilestoneID != nil {
		if number, ok := m.milestones.Number(*t.MilestoneID); ok {
			issue.Milestone = &number
		}
	}

	tag := ""
	if t.Tag != nil {
		tag = *t.Tag
	}
	issue.Labels = m.Labels(tag, t.State)

	return issue
}

// Labels returns the kept tags (in allow-list order) followed by the
// migration label and the ticket state, without duplicates.
func (m *Mapper) Labels(tag, state string) []string {
	tokens := make(map[string]bool)
	for _, tok := range splitTags(tag) {
		tokens[tok] = true
	}

	var labels []string
	seen := make(map[string]bool)
	add := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		labels = append(labels, label)
	}

	for _, keep := range m.keepLabels {
		if tokens[keep] {
			add(keep)
		}
	}
	add(m.migrationLabel)
	add(state)
	return labels
}

// splitTags splits a Lighthouse tag string. Tags are space separated and
// multi-word tags are double quoted.
func splitTags(tag string) []string {
	if strings.TrimSpace(tag) == "" {
		return nil
	}

	r := csv.NewReader(strings.NewReader(tag))
	r.Comma = ' '
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	record, err := r.Read()
	if err != nil {
		record = strings.Fields(tag)
	}

	tokens := record[:0]
	for _, tok := range record {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Comment maps a history entry to a comment payload. It reports false for
// entries that must not be migrated.
func (m *Mapper) Comment(v lighthouse.Version) (github.CommentRequest, bool) {
	if strings.Contains(v.Body, BulkEditMarker) {
		return github.CommentRequest{}, false
	}

	citation := markdown.CommentCitation(v.UserName, markdown.FormatTime(v.CreatedAt, m.loc))

	content := v.Body
	if content == "" && v.DiffableAttributes != nil {
		content = markdown.Lines(m.changeLines(v))
	}

	return github.CommentRequest{Body: markdown.Body(citation, content)}, true
}

// changeLines describes every attribute a version changed, in the order
// tag, state, assignee, title, milestone.
func (m *Mapper) changeLines(v lighthouse.Version) []string {
	d := v.DiffableAttributes
	var lines []string

	if d.Tag != nil {
		lines = append(lines, fmt.Sprintf(`- **Tag changed from "%s" to "%s"**`, d.Tag.String(), deref(v.Tag)))
	}
	if d.State != nil {
		lines = append(lines, fmt.Sprintf(`- **State changed from "%s" to "%s"**`, d.State.String(), v.State))
	}
	if d.AssignedUser != nil {
		lines = append(lines, fmt.Sprintf(`- **Issue assigned to "%s"**`, deref(v.AssignedUserName)))
	}
	if d.Title != nil {
		lines = append(lines, fmt.Sprintf(`- **Title changed from "%s" to "%s"**`, d.Title.String(), v.Title))
	}
	if d.Milestone != nil {
		from := unknownMilestone
		if id, ok := d.Milestone.Int(); ok {
			from = m.milestoneTitle(id)
		}
		to := unknownMilestone
		if v.MilestoneID != nil {
			to = m.milestoneTitle(*v.MilestoneID)
		}
		lines = append(lines, fmt.Sprintf(`- **Milestone changed from "%s" to "%s"**`, from, to))
	}

	return lines
}

func (m *Mapper) milestoneTitle(id int) string {
	if title, ok := m.milestones.Title(id); ok {
		return title
	}
	return unknownMilestone
}

// AttachmentResult classifies what AttachmentComment produced.
type AttachmentResult int

const (
	// AttachmentRendered means the payload should be posted.
	AttachmentRendered AttachmentResult = iota
	// AttachmentInvalid means the attachment had neither an image nor a file.
	AttachmentInvalid
	// AttachmentEmpty means the file downloaded with no content.
	AttachmentEmpty
	// AttachmentFailed means the file could not be downloaded.
	AttachmentFailed
)

// Fetcher downloads attachment contents.
type Fetcher interface {
	Attachment(ctx context.Context, url string) ([]byte, error)
}

// AttachmentComment maps an attachment to a comment payload. Images are
// linked in place; other files are downloaded and embedded as a fenced block.
func (m *Mapper) AttachmentComment(ctx context.Context, a lighthouse.Attachment, fetch Fetcher) (github.CommentRequest, AttachmentResult, error) {
	file, image := a.Image, true
	if file == nil {
		file, image = a.File, false
	}
	if file == nil {
		return github.CommentRequest{}, AttachmentInvalid, nil
	}

	citation := markdown.AttachmentCitation(file.Filename, file.URL, markdown.FormatTime(file.CreatedAt, m.loc))

	if image {
		return github.CommentRequest{Body: markdown.Body(citation, markdown.Image(file.Filename, file.URL))}, AttachmentRendered, nil
	}

	data, err := fetch.Attachment(ctx, file.URL)
	if err != nil {
		return github.CommentRequest{}, AttachmentFailed, fmt.Errorf("downloading %s: %w", file.Filename, err)
	}
	if len(data) == 0 {
		return github.CommentRequest{}, AttachmentEmpty, nil
	}

	contents := markdown.CodeBlock(markdown.Language(file.Filename), string(data))
	return github.CommentRequest{Body: markdown.Body(citation, contents)}, AttachmentRendered, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
