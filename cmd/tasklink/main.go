package main

import (
	"fmt"
	"os"

	"github.com/diggerhq/tasklink/pkg/usage"
)

/*
Exit codes:
0 - No errors
1 - Configuration error (missing or invalid input, unknown action)
2 - Failed to read the runner environment or the event payload
3 - Action failed
8 - Failed to execute command
*/

func main() {
	if len(os.Args) == 1 {
		os.Args = append([]string{os.Args[0]}, "run")
	}
	if err := rootCmd.Execute(); err != nil {
		usage.ReportErrorAndExit(fmt.Sprintf("Error occured during command exec: %v", err), 8)
	}
}
