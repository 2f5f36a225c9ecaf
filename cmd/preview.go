package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/migrate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var previewCmd = &cobra.Command{
	Use:   "preview <ticket-number>",
	Short: "Show what one ticket would look like on GitHub",
	Long: `Fetches a single Lighthouse ticket and prints the issue and comments that the
migration would post, as YAML. Nothing is written to GitHub. Milestones are not
created during a preview, so milestone references appear unresolved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil || number < 1 {
			return fmt.Errorf("invalid ticket number %q", args[0])
		}

		if err := loadConfig(); err != nil {
			return err
		}

		source := lighthouse.NewClient(appConfig.Lighthouse)
		ticket, err := source.Ticket(cmd.Context(), number)
		if err != nil {
			return fmt.Errorf("fetching ticket %d: %w", number, err)
		}
		if ticket == nil {
			return fmt.Errorf("ticket %d not found", number)
		}

		mapper := migrate.NewMapper(mapperConfig(appConfig), migrate.NewMilestoneMap())
		drafts := previewTicket(cmd.Context(), mapper, source, ticket)

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(drafts); err != nil {
			return fmt.Errorf("encoding preview: %w", err)
		}
		return enc.Close()
	},
}

// ticketPreview is the dry-run rendering of one ticket.
type ticketPreview struct {
	Issue    github.IssueRequest `yaml:"issue"`
	Comments []string            `yaml:"comments,omitempty"`
	Skipped  []string            `yaml:"skipped,omitempty"`
	Close    bool                `yaml:"close"`
}

func previewTicket(ctx context.Context, mapper *migrate.Mapper, fetch migrate.Fetcher, ticket *lighthouse.Ticket) ticketPreview {
	p := ticketPreview{
		Issue: mapper.Issue(ticket),
		Close: ticket.IsClosed() || ticket.State == migrate.ReviewState,
	}

	for i, v := range ticket.Versions {
		comment, ok := mapper.Comment(v)
		if !ok {
			p.Skipped = append(p.Skipped, fmt.Sprintf("version %d: bulk edit", i+1))
			continue
		}
		p.Comments = append(p.Comments, comment.Body)
	}

	for i, a := range ticket.Attachments {
		comment, result, err := mapper.AttachmentComment(ctx, a, fetch)
		switch result {
		case migrate.AttachmentInvalid:
			p.Skipped = append(p.Skipped, fmt.Sprintf("attachment %d: no image or file", i+1))
		case migrate.AttachmentEmpty:
			p.Skipped = append(p.Skipped, fmt.Sprintf("attachment %d: empty file", i+1))
		case migrate.AttachmentFailed:
			p.Skipped = append(p.Skipped, fmt.Sprintf("attachment %d: %v", i+1, err))
		default:
			p.Comments = append(p.Comments, comment.Body)
		}
	}

	return p
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
