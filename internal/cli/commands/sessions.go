package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sajjad939/safechild-lite/internal/cli/ui"
)

// sessionsCmd groups session inspection commands
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "inspect and manage tracked chat sessions",
	Long: `Inspect the safety state of tracked chat sessions.

Each session carries the escalation level decided so far, the resolved
age band, and counts of the risk categories seen. Escalation only moves
up during a conversation; 'reset' is the explicit way back down.`,
	Example: `  # List all tracked sessions
  $ safechildctl sessions list

  # Show one session
  $ safechildctl sessions get 6f1f9b2c-...

  # Clear a session's escalation state
  $ safechildctl sessions reset 6f1f9b2c-...

  # Remove a session entirely
  $ safechildctl sessions delete 6f1f9b2c-...`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list tracked sessions",
	RunE:  runSessionsList,
}

var sessionsGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "show the safety state of one session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsGet,
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "clear a session's escalation state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsReset,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "remove a session and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsGetCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	for _, c := range []*cobra.Command{sessionsListCmd, sessionsGetCmd, sessionsResetCmd, sessionsDeleteCmd} {
		c.SilenceUsage = true
	}
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := apiClient.ListSessions(ctx)
	if err != nil {
		ui.PrintError("failed to list sessions: %v", err)
		return fmt.Errorf("list operation failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderSessions(sessions))
	return nil
}

func runSessionsGet(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := apiClient.GetSession(ctx, args[0])
	if err != nil {
		ui.PrintError("failed to get session: %v", err)
		return fmt.Errorf("get operation failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderSessionDetail(session))
	return nil
}

func runSessionsReset(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := apiClient.ResetSession(ctx, args[0])
	if err != nil {
		ui.PrintError("failed to reset session: %v", err)
		return fmt.Errorf("reset operation failed")
	}

	ui.PrintSuccess("session %s reset, level is now %s", session.SessionID, session.Level)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiClient.DeleteSession(ctx, args[0]); err != nil {
		ui.PrintError("failed to delete session: %v", err)
		return fmt.Errorf("delete operation failed")
	}

	ui.PrintSuccess("session %s deleted", args[0])
	return nil
}
