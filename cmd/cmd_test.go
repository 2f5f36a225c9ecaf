package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dt-pm-tools/lh2gh/internal/config"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher map[string]string

func (s stubFetcher) Attachment(_ context.Context, url string) ([]byte, error) {
	body, ok := s[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func TestAssigneeSkeleton(t *testing.T) {
	known := map[string]string{"jane doe": "janedoe"}
	got := assigneeSkeleton([]string{"Jane Doe", "Bob"}, known)
	assert.Equal(t, map[string]string{"Jane Doe": "janedoe", "Bob": ""}, got)
}

func TestPreviewTicket(t *testing.T) {
	mapper := migrate.NewMapper(migrate.MapperConfig{
		KeepLabels:     []string{"bug"},
		MigrationLabel: "lighthouse",
		Location:       time.UTC,
	}, migrate.NewMilestoneMap())

	ticket := &lighthouse.Ticket{
		Number: 3,
		Title:  "Crash",
		State:  "review",
		Versions: []lighthouse.Version{
			{Body: "first"},
			{Body: "[bulk edit]"},
		},
		Attachments: []lighthouse.Attachment{
			{},
			{File: &lighthouse.File{Filename: "a.sh", URL: "https://x/a.sh"}},
		},
	}

	p := previewTicket(context.Background(), mapper, stubFetcher{"https://x/a.sh": "echo hi"}, ticket)

	assert.Equal(t, "Crash", p.Issue.Title)
	assert.True(t, p.Close)
	require.Len(t, p.Comments, 2)
	assert.Contains(t, p.Comments[1], "```Shell\necho hi\n```")
	assert.Equal(t, []string{"version 2: bulk edit", "attachment 1: no image or file"}, p.Skipped)
}

func TestMigrationOptions(t *testing.T) {
	cfg := config.Config{
		StartingTicket: 10,
		RequestDelay:   time.Second,
		MaxRetries:     3,
		KeepLabels:     []string{"bug"},
		MigrationLabel: "lighthouse",
	}
	opts := migrationOptions(cfg)
	assert.Equal(t, 10, opts.StartingTicket)
	assert.Equal(t, time.Second, opts.Delay)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, []string{"bug"}, opts.Mapping.KeepLabels)
	assert.Equal(t, time.UTC, opts.Mapping.Location)
}
