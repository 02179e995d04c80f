package main

import (
	"github.com/oy3o/fracpack/schema"
	"github.com/spf13/cobra"
)

func newMetaCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Print the schema of schema documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.format
			if format != "" {
				var err error
				if f, err = schema.ParseFormat(format); err != nil {
					return err
				}
			}
			s, err := schema.Of[schema.Schema](schema.WithLogger(a.log))
			if err != nil {
				return err
			}
			out, err := s.Encode(f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (default from config)")
	return cmd
}
