package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dt-pm-tools/lh2gh/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure Lighthouse and GitHub connection settings",
	Long: `Interactively set up the Lighthouse account, project and token and the GitHub
repository and token. Settings are saved to ~/.lh2gh.yaml. Label, assignee and
retry settings already in the file are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		// Load existing config for defaults
		cfg, _ := config.Load(cfgFile)

		cfg.Lighthouse.Account = prompt(reader, "Lighthouse account (the <account>.lighthouseapp.com part)", cfg.Lighthouse.Account)
		cfg.Lighthouse.Project = prompt(reader, "Lighthouse project id", cfg.Lighthouse.Project)
		token, err := promptSecret("Lighthouse read token", cfg.Lighthouse.Token)
		if err != nil {
			return err
		}
		cfg.Lighthouse.Token = token

		cfg.GitHub.Login = prompt(reader, "GitHub login", cfg.GitHub.Login)
		cfg.GitHub.Org = prompt(reader, "GitHub organization (blank for personal repo)", cfg.GitHub.Org)
		cfg.GitHub.Repo = prompt(reader, "GitHub repository name", cfg.GitHub.Repo)
		token, err = promptSecret("GitHub token (repo scope)", cfg.GitHub.Token)
		if err != nil {
			return err
		}
		cfg.GitHub.Token = token

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}

		fmt.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

// prompt reads one line, keeping current when the answer is blank.
func prompt(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return current
	}
	return answer
}

// promptSecret reads a token without echoing it.
func promptSecret(label, current string) (string, error) {
	fmt.Printf("%s (input hidden): ", label)
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return current, nil
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
}
