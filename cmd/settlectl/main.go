// Command settlectl is the operator tool for cancellation estimates and the
// event outbox.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	out     io.Writer
	output  string
	envFile string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:   "settlectl",
		Short: "Flower stand settlement and outbox operations",
		Long: `settlectl previews cancellation settlements and manages the event outbox.

Fee tiers by days remaining before delivery:
  3 days or fewer   100% of the collected amount
  4 to 7 days       50%
  more than 7 days  nothing
Declared material cost is always charged on top, capped at the collected amount.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.output {
			case formatTable, formatJSON, formatYAML:
				return nil
			}
			return fmt.Errorf("unknown output format %q", opts.output)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatTable, "output format: table, json or yaml")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with service settings")

	root.AddCommand(estimateCmd(opts))
	root.AddCommand(tiersCmd(opts))
	root.AddCommand(outboxCmd(opts))
	root.AddCommand(tokenCmd(opts))
	return root
}
