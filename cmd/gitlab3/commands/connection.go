package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session is what every resource command runs against.
type session struct {
	conn    *glclient.Connection
	ctx     context.Context //nolint:containedctx // one CLI invocation
	cleanup func()
}

// resolveHost picks the host from --host, then the current host. Without a
// configured host, --url alone is enough.
func resolveHost(config *Config) (string, *HostConfig, error) {
	name := viper.GetString("host")
	if name == "" {
		name = config.CurrentHost
	}

	if name == "" {
		if viper.GetString("url") != "" {
			return "", &HostConfig{}, nil
		}

		return "", nil, constants.ErrNoHostsConfigured
	}

	host, exists := config.Hosts[name]
	if !exists {
		return "", nil, fmt.Errorf("host '%s': %w", name, constants.ErrHostNotFound)
	}

	return name, host, nil
}

// buildConfig turns the global flags and the host entry into a connection
// config. Flags take precedence over the stored host.
func buildConfig(host *HostConfig) *gitlab3.Config {
	config := &gitlab3.Config{
		URL:           host.URL,
		Token:         host.Token,
		SkipTLSVerify: host.SkipSSLValidation || viper.GetBool("skip-ssl-validation"),
		Timeout:       viper.GetDuration("timeout"),
	}

	if url := viper.GetString("url"); url != "" {
		config.URL = url
	}

	if token := viper.GetString("token"); token != "" {
		config.Token = token
	}

	if viper.GetBool("verbose") {
		config.Logger = gitlab3.NewZerologLogger(os.Stderr, "debug")
		config.Debug = true
	}

	return config
}

// newSession connects to the selected host. The audit connection, if any, is
// closed by cleanup.
func newSession(cmd *cobra.Command) (*session, error) {
	name, host, err := resolveHost(loadConfig())
	if err != nil {
		return nil, err
	}

	config := buildConfig(host)
	if config.Token == "" {
		return nil, constants.ErrNoTokenForHost
	}

	cleanup := func() {}

	if natsURL := viper.GetString("audit-nats-url"); natsURL != "" {
		audit, err := gitlab3.ConnectAudit(natsURL)
		if err != nil {
			return nil, err
		}

		chain := gitlab3.NewInterceptorChain()
		chain.AddResponseInterceptor(gitlab3.AuditInterceptor(audit, "", false))
		config.Interceptors = chain

		cleanup = func() {
			_ = audit.Drain()
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var conn *glclient.Connection
	if name != "" {
		conn, err = glclient.NewWithPersister(ctx, config, NewConfigPersister(), name)
	} else {
		conn, err = glclient.New(ctx, config)
	}

	if err != nil {
		cleanup()

		return nil, err
	}

	if sudo := viper.GetString("sudo"); sudo != "" {
		ctx = gitlab3.WithSudo(ctx, sudo)
	}

	return &session{conn: conn, ctx: ctx, cleanup: cleanup}, nil
}

// owner walks the --in references from the root, building identity-only
// instances along the way.
func (s *session) owner(refs []string) (*glclient.Resource, error) {
	current := s.conn.Resource

	for _, ref := range refs {
		parts := strings.SplitN(ref, "=", constants.RefSplitParts)
		if len(parts) != constants.RefSplitParts || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidRef, ref)
		}

		next, err := current.Ref(parts[0], parts[1])
		if err != nil {
			return nil, err
		}

		current = next
	}

	return current, nil
}

// parseKeyValues turns key=value arguments into parameters.
func parseKeyValues(args []string) (gitlab3.Params, error) {
	params := gitlab3.Params{}

	for _, arg := range args {
		parts := strings.SplitN(arg, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, arg)
		}

		params[parts[0]] = parts[1]
	}

	return params, nil
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}

	return args
}
