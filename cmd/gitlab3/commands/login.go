package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		name     string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a GitLab instance",
		Long: `Exchange a username (or e-mail) and password for a private token.

The GitLab URL comes from --url, then the current host. The token is stored
with the host entry; the password is never saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			hostURL := viper.GetString("url")
			config := loadConfig()

			if hostURL == "" && config.CurrentHost != "" {
				if host, exists := config.Hosts[config.CurrentHost]; exists {
					hostURL = host.URL
					if name == "" {
						name = config.CurrentHost
					}
				}
			}

			if hostURL == "" {
				hostURL = prompt(cmd.OutOrStdout(), reader, "GitLab URL: ")
			}

			if hostURL == "" {
				return gitlab3.ErrURLRequired
			}

			if username == "" {
				username = prompt(cmd.OutOrStdout(), reader, "Username or e-mail: ")
			}

			if username == "" {
				return constants.ErrUsernameRequired
			}

			if password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

				secret, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(secret)

				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			if name == "" {
				name = hostNameFromURL(hostURL)
			}

			host, exists := config.Hosts[name]
			if !exists {
				host = &HostConfig{}
				config.Hosts[name] = host
			}

			host.URL = hostURL
			host.Username = username
			host.SkipSSLValidation = viper.GetBool("skip-ssl-validation")

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			conn, err := glclient.NewWithPersister(ctx, &gitlab3.Config{
				URL:           host.URL,
				SkipTLSVerify: host.SkipSSLValidation,
				Timeout:       viper.GetDuration("timeout"),
			}, NewConfigPersister(), name)
			if err != nil {
				return err
			}

			ok, err := conn.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}

			if !ok {
				return constants.ErrLoginRejected
			}

			// The persister has written the token; reload before touching the file again.
			config = loadConfig()
			if config.CurrentHost == "" {
				config.CurrentHost = name

				err = saveConfigStruct(config)
				if err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", name, username)

			user, err := conn.Get(ctx, "current_user", nil, nil)
			if err == nil {
				return renderResource(cmd.OutOrStdout(), user)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the host entry (default is the URL's host name)")
	cmd.Flags().StringVar(&username, "username", "", "username or e-mail address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token of a host",
		Long:  "Remove the stored private token of the selected host (--host) or the current host",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			name := viper.GetString("host")
			if name == "" {
				name = config.CurrentHost
			}

			if name == "" {
				return constants.ErrNoHostsConfigured
			}

			host, exists := config.Hosts[name]
			if !exists {
				return fmt.Errorf("host '%s': %w", name, constants.ErrHostNotFound)
			}

			host.Token = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", name)

			return nil
		},
	}
}

func prompt(w io.Writer, reader *bufio.Reader, label string) string {
	_, _ = fmt.Fprint(w, label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}
