package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dt-pm-tools/lh2gh/internal/lighthouse"
	"github.com/dt-pm-tools/lh2gh/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var assigneesCmd = &cobra.Command{
	Use:   "assignees",
	Short: "List Lighthouse assignees as a config skeleton",
	Long: `Scans every ticket of the Lighthouse project and prints the distinct assignee
names as an "assignees:" YAML block. Fill in the GitHub logins and paste it
into the config file; names left blank stay unassigned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		console := ui.NewConsole(os.Stderr, ui.ShouldUseColor(os.Stderr))
		client := lighthouse.NewClient(appConfig.Lighthouse)
		client.OnPage = func(page, found int) { console.Mark(found > 0) }

		console.Section("Collecting assignees")
		names, err := client.Assignees(cmd.Context())
		console.EndSection()
		if err != nil {
			return fmt.Errorf("collecting assignees: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Found %d assignees.\n", len(names))

		out, err := yaml.Marshal(map[string]map[string]string{"assignees": assigneeSkeleton(names, appConfig.Assignees)})
		if err != nil {
			return fmt.Errorf("encoding assignees: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

// assigneeSkeleton pairs each name with its configured login, if any.
func assigneeSkeleton(names []string, known map[string]string) map[string]string {
	skeleton := make(map[string]string, len(names))
	for _, name := range names {
		skeleton[name] = lookupAssignee(known, name)
	}
	return skeleton
}

// lookupAssignee matches name case-insensitively; viper folds config map
// keys to lower case.
func lookupAssignee(known map[string]string, name string) string {
	for k, login := range known {
		if strings.EqualFold(k, name) {
			return login
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(assigneesCmd)
}
