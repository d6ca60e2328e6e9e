package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
)

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the workspace configuration in another format",
		Long: `Export loads the workspace configuration, with environment variables
expanded, and prints it as YAML, TOML or JSON. Redirect the output to
convert a configuration file between formats.`,
		Example: `  plugsync export --format toml > .plugsync/workspace.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			return runExport(cmd.OutOrStdout(), ws, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Configuration format: yaml, toml, json")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "toml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(stdout io.Writer, ws, format string) error {
	var f config.Format
	switch strings.ToLower(format) {
	case "yaml", "yml":
		f = config.FormatYAML
	case "toml":
		f = config.FormatTOML
	case "json":
		f = config.FormatJSON
	default:
		return fmt.Errorf("unknown configuration format: %s", format)
	}

	cfg, _, err := loadWorkspaceConfig(ws)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg, f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}
