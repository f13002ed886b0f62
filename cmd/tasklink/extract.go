package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/diggerhq/tasklink/pkg/references"
	"github.com/diggerhq/tasklink/pkg/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var vipExtract *viper.Viper

func extract(out io.Writer, text string, trigger string, host string) {
	matcher := references.NewMatcherForHost(trigger, host)
	for _, ref := range matcher.References(text) {
		fmt.Fprintln(out, ref.String())
	}
}

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Print the task references found in text, read from stdin when no argument is given",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				usage.ReportErrorAndExit(fmt.Sprintf("could not read stdin: %v", err), 1)
			}
			text = string(data)
		}
		extract(cmd.OutOrStdout(), text, vipExtract.GetString("trigger-phrase"), vipExtract.GetString("host"))
	},
}

func init() {
	flags := []pflag.Flag{
		{Name: "trigger-phrase", Usage: "Text that must immediately precede a task link", DefValue: ""},
		{Name: "host", Usage: "Host of the task links", DefValue: references.DefaultHost},
	}

	vipExtract = viper.New()
	vipExtract.SetEnvPrefix("INPUT")
	vipExtract.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vipExtract.AutomaticEnv()

	for _, flag := range flags {
		extractCmd.Flags().String(flag.Name, flag.DefValue, flag.Usage)
		vipExtract.BindPFlag(flag.Name, extractCmd.Flags().Lookup(flag.Name))
	}

	rootCmd.AddCommand(extractCmd)
}
