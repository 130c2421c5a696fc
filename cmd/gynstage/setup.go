package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lionsmanic/gyn-cancer-staging/internal/config"
	"github.com/lionsmanic/gyn-cancer-staging/internal/setup"
)

func setupCmd() *cobra.Command {
	s := &cobra.Command{Use: "setup", Short: "Register the MCP server with a desktop client"}
	s.AddCommand(setupDesktopCmd())
	s.AddCommand(setupStatusCmd())
	return s
}

func setupDesktopCmd() *cobra.Command {
	var opts setup.Options
	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Add the staging server to the desktop client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.BinaryPath == "" {
				if path, err := setup.FindBinary(setup.BinaryName); err == nil {
					opts.BinaryPath = path
				} else if self, err := os.Executable(); err == nil {
					opts.BinaryPath = self
					opts.Args = []string{"serve", "mcp"}
				}
			}

			path, err := setup.Register(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s in %s\nrestart the desktop client to load it\n", setup.ServerName, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.BinaryPath, "binary", "", "server binary (default: gynstage-mcp on PATH)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory passed as GYNSTAGE_DATA_DIR")
	cmd.Flags().StringVar(&opts.ConfigPath, "config-path", "", "desktop client config file (default: platform location)")
	return cmd
}

func setupStatusCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := setup.GetStatus(configPath, config.DefaultLiteConfig().DataDir)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), status)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendRow(table.Row{"Config", status.ConfigPath})
			tw.AppendRow(table.Row{"Registered", status.Registered})
			tw.AppendRow(table.Row{"Command", status.Command})
			tw.AppendRow(table.Row{"Data dir", status.DataDir})
			for _, issue := range status.Issues {
				tw.AppendRow(table.Row{"Issue", issue})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config-path", "", "desktop client config file (default: platform location)")
	return cmd
}
