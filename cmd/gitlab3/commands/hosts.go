package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewHostsCommand creates the hosts command group.
func NewHostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"host"},
		Short:   "Manage configured GitLab hosts",
		Long:    "List the configured GitLab hosts and select the current one",
	}

	cmd.AddCommand(newHostsListCommand())
	cmd.AddCommand(newHostsUseCommand())

	return cmd
}

func newHostsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskTokens(loadConfig())
			if len(config.Hosts) == 0 {
				return constants.ErrNoHostsConfigured
			}

			switch viper.GetString(outputKey) {
			case constants.FormatJSON:
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(config.Hosts)
			case constants.FormatYAML:
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(config.Hosts)
			default:
				return renderHostsTable(cmd, config)
			}
		},
	}
}

func newHostsUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the current host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setGlobalConfig(config, currentHostKey, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Now using %s (%s)\n", args[0], config.Hosts[args[0]].URL)

			return nil
		},
	}
}
