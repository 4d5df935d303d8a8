package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sajjad939/safechild-lite/internal/cli/client"
	"github.com/sajjad939/safechild-lite/internal/cli/config"
	"github.com/sajjad939/safechild-lite/internal/cli/types"
	"github.com/sajjad939/safechild-lite/internal/cli/ui"
)

var (
	chatAge       int
	chatSessionID string
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start an interactive safety chat session",
	Long: `Start an interactive chat session with the SafeChild companion.

Replies stream in real time. The escalation level decided by the server
is shown before each reply, so a caregiver can watch a session escalate.`,
	Example: `  # Start a new chat
  $ safechildctl chat

  # Chat with the child's age set (tightens response constraints)
  $ safechildctl chat --age 7

  # Resume an earlier session
  $ safechildctl chat --session 6f1f9b2c-...`,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
	chatCmd.Flags().IntVar(&chatAge, "age", 0, "child's age in years (0 means unknown)")
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session ID to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'safechildctl chat' to start an interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	cfg, apiClient, err := loadClient()
	if err != nil {
		return err
	}

	var age *int
	switch {
	case chatAge > 0:
		age = &chatAge
	case cfg.ChildAge > 0:
		age = &cfg.ChildAge
	}

	sessionID := chatSessionID

	ui.PrintChatWelcomeBanner()
	fmt.Println("Type a message and press Enter. Type 'exit' to quit.")
	fmt.Println()

	var history []types.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		history = append(history, types.ChatMessage{Role: "user", Content: input})

		chunkCh, errCh, err := apiClient.ChatStreaming(context.Background(), history, sessionID, age)
		if err != nil {
			ui.PrintError("chat request failed: %v", err)
			// Drop the failed turn so a retry doesn't double-send it
			history = history[:len(history)-1]
			continue
		}

		reply, safety, streamErr := drainStream(chunkCh, errCh, &sessionID)
		if streamErr != nil {
			ui.PrintError("stream error: %v", streamErr)
			history = history[:len(history)-1]
			continue
		}
		if reply != "" {
			history = append(history, types.ChatMessage{Role: "assistant", Content: reply})
		}

		fmt.Println()
		if safety != nil && safety.Level != "none" {
			fmt.Printf("  %s", ui.LevelBadge(safety.Level))
			if safety.Fallback {
				fmt.Print("  (fallback reply)")
			}
			fmt.Println()
		}
		fmt.Println()
	}

	// Remember the session so it can be resumed or inspected later
	if sessionID != "" {
		cfg.LastSessionID = sessionID
		if err := cfg.Save(); err != nil {
			ui.PrintWarning("failed to save config: %v", err)
		}
		fmt.Printf("session: %s\n", sessionID)
	}

	return nil
}

// drainStream prints delta content as it arrives and collects the full reply.
// The session ID and safety info ride on the first chunk.
func drainStream(chunkCh <-chan types.ChatStreamChunk, errCh <-chan error, sessionID *string) (string, *types.SafetyInfo, error) {
	var reply strings.Builder
	var safety *types.SafetyInfo

	fmt.Print("companion> ")
	for chunk := range chunkCh {
		if chunk.SessionID != "" {
			*sessionID = chunk.SessionID
		}
		if chunk.Safety != nil {
			safety = chunk.Safety
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				fmt.Print(choice.Delta.Content)
				reply.WriteString(choice.Delta.Content)
			}
		}
	}

	if err := <-errCh; err != nil {
		return reply.String(), safety, err
	}
	return reply.String(), safety, nil
}

// loadClient loads the CLI config and builds an API client from it.
func loadClient() (*config.Config, *client.APIClient, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	server := cfg.Server
	if serverFlag != "" {
		server = serverFlag
	}

	apiClient, err := client.NewAPIClient(server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}

	return cfg, apiClient, nil
}
