package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := newOutputWriter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if writer.Structured() {
				return writer.Write(buildInfo)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "plugsync version %s (commit %s, built %s)\n",
				buildInfo.Version, buildInfo.Commit, buildInfo.Date)
			return err
		},
	}
}
