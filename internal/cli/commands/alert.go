package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sajjad939/safechild-lite/internal/cli/types"
	"github.com/sajjad939/safechild-lite/internal/cli/ui"
)

var (
	alertDescription string
	alertSeverity    string
	alertChildName   string
	alertLocation    string
	alertSessionID   string
)

// alertCmd groups emergency alert commands
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "raise and review emergency alerts",
	Long: `Raise emergency alerts and review those already recorded.

An alert is persisted before any notification goes out, so a failed SMS
gateway never loses the record. When a session ID is given and no
severity is set, severity follows that session's escalation level.`,
	Example: `  # Raise an alert tied to a chat session
  $ safechildctl alert raise -d "child disclosed abuse" --session 6f1f9b2c-...

  # Raise an alert with explicit severity
  $ safechildctl alert raise -d "stranger at school gate" --severity high

  # Review recent alerts
  $ safechildctl alert list`,
}

var alertRaiseCmd = &cobra.Command{
	Use:   "raise",
	Short: "raise an emergency alert",
	RunE:  runAlertRaise,
}

var alertListCmd = &cobra.Command{
	Use:   "list",
	Short: "list recent alerts",
	RunE:  runAlertList,
}

func init() {
	alertRaiseCmd.Flags().StringVarP(&alertDescription, "description", "d", "", "what happened (required)")
	alertRaiseCmd.Flags().StringVar(&alertSeverity, "severity", "", "critical, high, medium or low")
	alertRaiseCmd.Flags().StringVar(&alertChildName, "child", "", "child's name")
	alertRaiseCmd.Flags().StringVar(&alertLocation, "location", "", "where it happened")
	alertRaiseCmd.Flags().StringVar(&alertSessionID, "session", "", "chat session the alert relates to")
	_ = alertRaiseCmd.MarkFlagRequired("description")

	alertCmd.AddCommand(alertRaiseCmd)
	alertCmd.AddCommand(alertListCmd)

	alertRaiseCmd.SilenceUsage = true
	alertListCmd.SilenceUsage = true
}

func runAlertRaise(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alert, err := apiClient.RaiseAlert(ctx, &types.AlertRequest{
		SessionID:   alertSessionID,
		ChildName:   alertChildName,
		Description: alertDescription,
		Location:    alertLocation,
		Severity:    alertSeverity,
	})
	if err != nil {
		ui.PrintError("failed to raise alert: %v", err)
		return fmt.Errorf("alert operation failed")
	}

	ui.PrintSuccess("alert %s raised (severity: %s)", alert.AlertID, alert.Severity)
	if alert.SMSSent {
		ui.PrintInfo("guardians notified by SMS")
	} else {
		ui.PrintWarning("no SMS sent")
	}

	fmt.Println()
	fmt.Println(ui.RenderAlertDetail(alert))
	return nil
}

func runAlertList(cmd *cobra.Command, args []string) error {
	_, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alerts, err := apiClient.ListAlerts(ctx)
	if err != nil {
		ui.PrintError("failed to list alerts: %v", err)
		return fmt.Errorf("list operation failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderAlerts(alerts))
	return nil
}
