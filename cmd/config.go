package cmd

import (
	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var configPath string

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		cmd.Println(tui.RenderSuccess("Wrote " + path))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the default config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(config.DefaultPath())
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configPath, "path", "", "where to write the file (default the user config dir)")
	ConfigCmd.AddCommand(configInitCmd, configPathCmd)
}
