package migrate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper(milestones *MilestoneMap) *Mapper {
	return NewMapper(MapperConfig{
		KeepLabels:     []string{"new", "open", "bug", "needs review"},
		MigrationLabel: "lighthouse",
		Assignees:      map[string]string{"Jane Doe": "janedoe"},
		Location:       time.UTC,
	}, milestones)
}

func TestIssueMapping(t *testing.T) {
	milestones := NewMilestoneMap()
	milestones.Record(12, 3, "1.0")
	m := newTestMapper(milestones)

	issue := m.Issue(&lighthouse.Ticket{
		Number:           7,
		Title:            "Crash on save",
		OriginalBody:     "It crashes.",
		URL:              "https://acme.lighthouseapp.com/projects/42/tickets/7",
		CreatedAt:        "2010-03-04T15:00:00Z",
		CreatorName:      "Bob",
		AssignedUserName: strp("Jane Doe"),
		MilestoneID:      intp(12),
		Tag:              strp(`bug "needs review" ui`),
		State:            "open",
	})

	assert.Equal(t, "Crash on save", issue.Title)
	assert.Equal(t,
		"*Imported from Lighthouse* https://acme.lighthouseapp.com/projects/42/tickets/7\n"+
			"Reported by **Bob** at **Thursday, 04-Mar-10 15:00:00 UTC**\n\nIt crashes.",
		issue.Body)
	assert.Equal(t, "janedoe", issue.Assignee)
	require.NotNil(t, issue.Milestone)
	assert.Equal(t, 3, *issue.Milestone)
	assert.Equal(t, []string{"bug", "needs review", "lighthouse", "open"}, issue.Labels)
}

func TestIssueOmitsUnresolvedReferences(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())

	issue := m.Issue(&lighthouse.Ticket{
		Title:            "x",
		AssignedUserName: strp("Stranger"),
		MilestoneID:      intp(99),
		State:            "new",
	})

	assert.Empty(t, issue.Assignee)
	assert.Nil(t, issue.Milestone)
	assert.Equal(t, []string{"new", "lighthouse"}, issue.Labels)
}

func TestIssueBodyTruncated(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	issue := m.Issue(&lighthouse.Ticket{
		Title:        "big",
		OriginalBody: strings.Repeat("x", 2*markdown.MaxBodyBytes),
	})
	assert.Len(t, issue.Body, markdown.MaxBodyBytes)
	assert.True(t, strings.HasPrefix(issue.Body, "*Imported from Lighthouse*"))
}

func TestLabelsIndependentOfOrderAndDuplicates(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())

	want := []string{"new", "bug", "lighthouse", "resolved"}
	for _, tag := range []string{
		"bug new other",
		"new bug",
		"other  bug bug new new",
		"\"bug\" new",
	} {
		assert.Equal(t, want, m.Labels(tag, "resolved"), "tag %q", tag)
	}
}

func TestLabelsStateAlreadyKept(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	assert.Equal(t, []string{"open", "lighthouse"}, m.Labels("open", "open"))
	assert.Equal(t, []string{"lighthouse"}, m.Labels("", ""))
}

func TestCommentSkipsBulkEdits(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	for _, body := range []string{"[bulk edit]", "changed stuff [bulk edit] here", "x\n\n[bulk edit]"} {
		_, ok := m.Comment(lighthouse.Version{Body: body})
		assert.False(t, ok, body)
	}
}

func TestCommentWithBody(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	c, ok := m.Comment(lighthouse.Version{
		Body:      "Looks fixed.",
		UserName:  "Jane",
		CreatedAt: "2010-03-04T15:00:00Z",
		DiffableAttributes: &lighthouse.DiffableAttributes{
			State: lighthouse.NewValue("open"),
		},
	})
	require.True(t, ok)
	assert.Equal(t,
		"*Imported from Lighthouse*\nComment by **Jane** at **Thursday, 04-Mar-10 15:00:00 UTC**\n\nLooks fixed.",
		c.Body)
}

func TestCommentRendersEveryChange(t *testing.T) {
	milestones := NewMilestoneMap()
	milestones.Record(1, 1, "Alpha")
	milestones.Record(2, 2, "Beta")
	m := newTestMapper(milestones)

	c, ok := m.Comment(lighthouse.Version{
		UserName:         "Jane",
		CreatedAt:        "2010-03-04T15:00:00Z",
		Tag:              strp("bug ui"),
		State:            "resolved",
		Title:            "New title",
		AssignedUserName: strp("Bob"),
		MilestoneID:      intp(2),
		DiffableAttributes: &lighthouse.DiffableAttributes{
			Milestone:    lighthouse.NewValue("1"),
			Title:        lighthouse.NewValue("Old title"),
			State:        lighthouse.NewValue("open"),
			Tag:          lighthouse.NewValue("bug"),
			AssignedUser: lighthouse.NewValue("15"),
		},
	})
	require.True(t, ok)

	_, content, found := strings.Cut(c.Body, "\n\n")
	require.True(t, found)
	assert.Equal(t, strings.Join([]string{
		`- **Tag changed from "bug" to "bug ui"**`,
		`- **State changed from "open" to "resolved"**`,
		`- **Issue assigned to "Bob"**`,
		`- **Title changed from "Old title" to "New title"**`,
		`- **Milestone changed from "Alpha" to "Beta"**`,
	}, "\n")+"\n", content)
}

func TestCommentUnknownMilestones(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())

	c, ok := m.Comment(lighthouse.Version{
		DiffableAttributes: &lighthouse.DiffableAttributes{
			Milestone: lighthouse.NewValue(""),
		},
		MilestoneID: intp(5),
	})
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(c.Body, "- **Milestone changed from \"Unknown\" to \"Unknown\"**\n"))
}

func TestCommentEmptyWithoutChanges(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	c, ok := m.Comment(lighthouse.Version{UserName: "Jane", CreatedAt: "then"})
	require.True(t, ok)
	assert.Equal(t, "*Imported from Lighthouse*\nComment by **Jane** at **then**\n\n", c.Body)
}

func TestAttachmentComment(t *testing.T) {
	m := newTestMapper(NewMilestoneMap())
	src := &fakeSource{files: map[string]string{
		"https://x/main.go":   "package main",
		"https://x/empty.txt": "",
	}}
	ctx := context.Background()

	t.Run("image", func(t *testing.T) {
		c, res, err := m.AttachmentComment(ctx, lighthouse.Attachment{
			Image: &lighthouse.File{Filename: "shot.png", URL: "https://x/shot.png", CreatedAt: "then"},
		}, src)
		require.NoError(t, err)
		assert.Equal(t, AttachmentRendered, res)
		assert.Equal(t,
			"*Imported from Lighthouse* [shot.png](https://x/shot.png)\n**shot.png** created at **then**\n\n![shot.png](https://x/shot.png)",
			c.Body)
	})

	t.Run("file", func(t *testing.T) {
		c, res, err := m.AttachmentComment(ctx, lighthouse.Attachment{
			File: &lighthouse.File{Filename: "main.go", URL: "https://x/main.go", CreatedAt: "then"},
		}, src)
		require.NoError(t, err)
		assert.Equal(t, AttachmentRendered, res)
		assert.True(t, strings.HasSuffix(c.Body, "```Go\npackage main\n```\n"))
	})

	t.Run("empty file", func(t *testing.T) {
		_, res, err := m.AttachmentComment(ctx, lighthouse.Attachment{
			File: &lighthouse.File{Filename: "empty.txt", URL: "https://x/empty.txt"},
		}, src)
		require.NoError(t, err)
		assert.Equal(t, AttachmentEmpty, res)
	})

	t.Run("invalid", func(t *testing.T) {
		_, res, err := m.AttachmentComment(ctx, lighthouse.Attachment{}, src)
		require.NoError(t, err)
		assert.Equal(t, AttachmentInvalid, res)
	})

	t.Run("download failure", func(t *testing.T) {
		_, res, err := m.AttachmentComment(ctx, lighthouse.Attachment{
			File: &lighthouse.File{Filename: "gone.txt", URL: "https://x/gone.txt"},
		}, src)
		assert.Error(t, err)
		assert.Equal(t, AttachmentFailed, res)
	})
}
