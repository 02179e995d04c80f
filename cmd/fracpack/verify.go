package main

import (
	"fmt"
	"reflect"

	"github.com/fatih/color"
	"github.com/oy3o/fracpack/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Verify a fracpack-encoded schema document",
		Long: `Verify checks that the input is exactly one valid fracpack-encoded schema
document without decoding it, then reports how many definitions it holds.
The exit status is non-zero when the input is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen, color.Bold)
			red := color.New(color.FgRed, color.Bold)

			c := a.codec()
			if err := c.Verify(data, reflect.TypeFor[schema.Schema]()); err != nil {
				red.Fprint(out, "FAIL")
				fmt.Fprintf(out, " %s: %v\n", name, err)
				a.log.Warn("verification failed", zap.String("input", name), zap.Error(err))
				return fmt.Errorf("%s: %w", name, err)
			}

			s, err := schema.DecodeWith(c, data, schema.FormatFracpack)
			if err != nil {
				return err
			}
			green.Fprint(out, "ok")
			fmt.Fprintf(out, "   %s: %d bytes, %d definitions\n", name, len(data), len(s.UserTypes))
			return nil
		},
	}
}
