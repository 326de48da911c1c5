package main

import (
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after applying the config file, environment
variables and defaults. Secrets are masked unless --reveal is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := *cfg
			if !reveal {
				out = cfg.Redacted()
			}
			data, err := out.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")

	return cmd
}
