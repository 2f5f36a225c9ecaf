package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dt-pm-tools/lh2gh/internal/github"
	"github.com/dt-pm-tools/lh2gh/internal/ui"
	"github.com/spf13/cobra"
)

const labelColor = "FFFFFF"

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Create the kept labels on the GitHub repository",
	Long: `Creates every label in keep_labels plus the migration label on the target
repository so they exist before issues reference them. Labels that already
exist are reported with "!" and left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		client := github.NewClient(appConfig.GitHub)
		console := ui.NewConsole(os.Stdout, ui.ShouldUseColor(os.Stdout))

		names := append([]string{}, appConfig.KeepLabels...)
		if appConfig.MigrationLabel != "" {
			names = append(names, appConfig.MigrationLabel)
		}

		console.Section("Creating labels")
		failed := 0
		for _, name := range names {
			label, _, err := client.CreateLabel(cmd.Context(), github.LabelRequest{Name: name, Color: labelColor})
			if err != nil || label.URL == nil {
				slog.Warn("label not created", "label", name, "error", err)
				failed++
				console.Mark(false)
				continue
			}
			console.Mark(true)
		}
		console.EndSection()

		fmt.Printf("%d of %d labels created\n", len(names)-failed, len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}
