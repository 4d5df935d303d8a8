package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sajjad939/safechild-lite/internal/cli/commands"
	"github.com/sajjad939/safechild-lite/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		// Handle unknown command errors specially
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'safechildctl --help' for usage.")
		}
		os.Exit(1)
	}
}
