package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bearanvil/trafficled/internal/config"
)

var (
	forceInit  bool
	showFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	Long: `Write the default settings to the config file. The format follows the
extension of --config: .toml for TOML, anything else for YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := config.FormatYAML
		switch showFormat {
		case "yaml", "yml":
		case "toml":
			format = config.FormatTOML
		default:
			return fmt.Errorf("unknown format %q (want yaml or toml)", showFormat)
		}
		out, err := cfg.Encode(format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configShowCmd.Flags().StringVar(&showFormat, "format", "yaml", "Output format (yaml, toml)")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}
