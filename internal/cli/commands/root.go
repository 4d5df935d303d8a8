package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sajjad939/safechild-lite/internal/cli/ui"
)

const version = "0.1.0"

// serverFlag overrides the server address from the config file
var serverFlag string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "safechildctl",
	Short:   "SafeChild companion CLI",
	Version: version,
	Long: `A command-line tool for the SafeChild API server. Provides an interactive
child-safety chat with live escalation status, session inspection, and
emergency alert management.`,
	Example: `  # Start interactive chat
  $ safechildctl chat

  # Chat with the child's age set
  $ safechildctl chat --age 9

  # Inspect tracked sessions
  $ safechildctl sessions list

  # Raise an emergency alert
  $ safechildctl alert raise -d "child disclosed abuse" --severity critical

  # Get help on a specific command
  $ safechildctl sessions --help`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "API server address (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(alertCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("safechildctl version %s\n", version)
}
