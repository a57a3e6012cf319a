package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	currentHostKey = "current_host"
	outputKey      = "output"
)

// Config represents the CLI configuration.
type Config struct {
	Hosts       map[string]*HostConfig `json:"hosts,omitempty"        yaml:"hosts,omitempty"`
	CurrentHost string                 `json:"current_host,omitempty" yaml:"current_host,omitempty"`
	Output      string                 `json:"output,omitempty"       yaml:"output,omitempty"`
}

// HostConfig represents one GitLab instance.
type HostConfig struct {
	URL               string `json:"url"                 yaml:"url"`
	Token             string `json:"token,omitempty"     yaml:"token,omitempty"`
	Username          string `json:"username,omitempty"  yaml:"username,omitempty"`
	SkipSSLValidation bool   `json:"skip_ssl_validation" yaml:"skip_ssl_validation"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage gitlab3 CLI configuration including hosts and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration. Tokens are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskTokens(loadConfig())

			switch viper.GetString(outputKey) {
			case constants.FormatJSON:
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(config)
			default:
				return displayConfigTable(cmd, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var hostFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a global configuration value (output, current_host) or, with --host,
a value of one host (url, token, username, skip_ssl_validation).`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			var err error
			if hostFlag != "" {
				err = setHostConfig(config, hostFlag, args[0], args[1])
			} else {
				err = setGlobalConfig(config, args[0], args[1])
			}

			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", qualifiedKey(hostFlag, args[0]))

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "set a value of this host")

	return cmd
}

func newConfigUnsetCommand() *cobra.Command {
	var hostFlag string

	cmd := &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a global configuration value or, with --host, a value of one host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			var err error
			if hostFlag != "" {
				err = unsetHostConfig(config, hostFlag, args[0])
			} else {
				err = unsetGlobalConfig(config, args[0])
			}

			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", qualifiedKey(hostFlag, args[0]))

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "unset a value of this host")

	return cmd
}

func qualifiedKey(host, key string) string {
	if host == "" {
		return key
	}

	return host + "." + key
}

func loadConfig() *Config {
	config := &Config{
		Hosts:       make(map[string]*HostConfig),
		CurrentHost: viper.GetString(currentHostKey),
		Output:      viper.GetString(outputKey),
	}

	for name, raw := range viper.GetStringMap("hosts") {
		hostMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		config.Hosts[name] = &HostConfig{
			URL:               cast.ToString(hostMap["url"]),
			Token:             cast.ToString(hostMap["token"]),
			Username:          cast.ToString(hostMap["username"]),
			SkipSSLValidation: cast.ToBool(hostMap["skip_ssl_validation"]),
		}
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, constants.ConfigDirName)

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, constants.ConfigFileName+".yml"), nil
}

// saveConfigStruct writes config and feeds it back into viper so later
// reads in the same process see it.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set("hosts", hostsAsMap(config.Hosts))
	viper.Set(currentHostKey, config.CurrentHost)

	return nil
}

func hostsAsMap(hosts map[string]*HostConfig) map[string]interface{} {
	out := make(map[string]interface{}, len(hosts))

	for name, host := range hosts {
		out[name] = map[string]interface{}{
			"url":                 host.URL,
			"token":               host.Token,
			"username":            host.Username,
			"skip_ssl_validation": host.SkipSSLValidation,
		}
	}

	return out
}

// hostNameFromURL derives the key a new host is stored under.
func hostNameFromURL(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}

	return parsed.Hostname()
}

func setGlobalConfig(config *Config, key, value string) error {
	switch key {
	case outputKey:
		if !isSupportedFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, value)
		}

		config.Output = value
	case currentHostKey:
		if _, exists := config.Hosts[value]; !exists {
			return fmt.Errorf("host '%s': %w", value, constants.ErrHostNotFound)
		}

		config.CurrentHost = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetGlobalConfig(config *Config, key string) error {
	switch key {
	case outputKey:
		config.Output = ""
	case currentHostKey:
		config.CurrentHost = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func hostConfigHandler(key string) (func(*HostConfig, string), bool) {
	handlers := map[string]func(*HostConfig, string){
		"url":                 func(h *HostConfig, v string) { h.URL = v },
		"token":               func(h *HostConfig, v string) { h.Token = v },
		"username":            func(h *HostConfig, v string) { h.Username = v },
		"skip_ssl_validation": func(h *HostConfig, v string) { h.SkipSSLValidation = parseBoolValue(v) },
	}

	handler, ok := handlers[key]

	return handler, ok
}

func setHostConfig(config *Config, host, key, value string) error {
	hostConfig, exists := config.Hosts[host]
	if !exists {
		if key != "url" {
			return fmt.Errorf("host '%s': %w", host, constants.ErrHostNotFound)
		}

		hostConfig = &HostConfig{}
		config.Hosts[host] = hostConfig

		if config.CurrentHost == "" {
			config.CurrentHost = host
		}
	}

	handler, ok := hostConfigHandler(key)
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	handler(hostConfig, value)

	return nil
}

func unsetHostConfig(config *Config, host, key string) error {
	hostConfig, exists := config.Hosts[host]
	if !exists {
		return fmt.Errorf("host '%s': %w", host, constants.ErrHostNotFound)
	}

	if key == "url" {
		delete(config.Hosts, host)

		if config.CurrentHost == host {
			config.CurrentHost = ""
		}

		return nil
	}

	handler, ok := hostConfigHandler(key)
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	handler(hostConfig, "")

	return nil
}

func parseBoolValue(value string) bool {
	return value == constants.BooleanTrue || value == constants.BooleanOne
}

func isSupportedFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func maskTokens(config *Config) *Config {
	masked := &Config{
		Hosts:       make(map[string]*HostConfig, len(config.Hosts)),
		CurrentHost: config.CurrentHost,
		Output:      config.Output,
	}

	for name, host := range config.Hosts {
		copied := *host
		if copied.Token != "" {
			copied.Token = constants.MaskedSecret
		}

		masked.Hosts[name] = &copied
	}

	return masked
}

func sortedHostNames(hosts map[string]*HostConfig) []string {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Value")

	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"Current Host", formatConfigValue(config.CurrentHost)})

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Global Configuration:")

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if len(config.Hosts) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nHosts:")

	return renderHostsTable(cmd, config)
}

func renderHostsTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Name", "URL", "Username", "Token", "Skip SSL", "Current")

	for _, name := range sortedHostNames(config.Hosts) {
		host := config.Hosts[name]

		token := constants.NotAvailable
		if host.Token != "" {
			token = constants.MaskedSecret
		}

		_ = table.Append([]string{
			name,
			host.URL,
			formatConfigValue(host.Username),
			token,
			strconv.FormatBool(host.SkipSSLValidation),
			formatCurrentIndicator(name == config.CurrentHost),
		})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render hosts table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatCurrentIndicator(isCurrent bool) string {
	if isCurrent {
		return constants.CheckMarkSymbol
	}

	return ""
}
