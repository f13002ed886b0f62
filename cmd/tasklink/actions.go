package main

import (
	"fmt"

	"github.com/diggerhq/tasklink/pkg/dispatch"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the recognized values of the action input",
	Run: func(cmd *cobra.Command, args []string) {
		names := lo.Map(dispatch.AllActions(), func(a dispatch.Action, _ int) string { return a.String() })
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
