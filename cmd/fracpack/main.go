// Command fracpack converts, verifies and describes fracpack schema documents.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := newApp()
	root := &cobra.Command{
		Use:   "fracpack",
		Short: "Tools for fracpack schema documents",
		Long: `fracpack converts schema documents between JSON, YAML, CBOR and the
fracpack binary encoding, and verifies fracpack-encoded documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./fracpack.yaml or ~/.config/fracpack/fracpack.yaml)")
	flags.Bool("verbose", false, "Log debug output to stderr")
	flags.Bool("tolerate-unknown-variants", false, "Skip union variants this build does not know")
	flags.Int64("max-input", defaultMaxInput, "Largest input accepted, in bytes")
	a.bindFlags(flags)

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newVerifyCmd(a))
	root.AddCommand(newMetaCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}
