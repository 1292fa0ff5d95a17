package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/trendsim/config"
	"github.com/rustyeddy/trendsim/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or scaffold a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if cfgOut != "" {
			if err := cfg.SaveToFile(cfgOut); err != nil {
				return err
			}
			logger.Infof("wrote default config to %s", cfgOut)
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var cfgOut string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&cfgOut, "out", "o", "", "write the default config to this path instead of stdout")
}
