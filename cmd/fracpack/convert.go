package main

import (
	"fmt"
	"path/filepath"

	"github.com/oy3o/fracpack/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConvertCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a schema document between formats",
		Long: `Convert reads a schema document from file, or stdin when no file is given,
and writes it to stdout in another format. The input format defaults to the
file extension; the output format defaults to the configured format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}

			if from == "" {
				if len(args) == 0 || filepath.Ext(args[0]) == "" {
					return fmt.Errorf("cannot infer the format of %s, use --from", name)
				}
				from = filepath.Ext(args[0])
			}
			inFmt, err := schema.ParseFormat(from)
			if err != nil {
				return err
			}
			outFmt := a.format
			if to != "" {
				if outFmt, err = schema.ParseFormat(to); err != nil {
					return err
				}
			}

			s, err := schema.DecodeWith(a.codec(), data, inFmt)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out, err := s.Encode(outFmt)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			a.log.Info("schema converted",
				zap.String("input", name),
				zap.Stringer("from", inFmt),
				zap.Stringer("to", outFmt),
				zap.Int("definitions", len(s.UserTypes)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "Input format: json, yaml, cbor or fracpack")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Output format (default from config)")
	return cmd
}
