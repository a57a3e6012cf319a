package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/gitlab3/internal/auth"
	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/internal/http"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/spf13/cast"
)

// Connection is the root of a bound resource graph. It embeds the root
// resource, so root-level operations such as List(ctx, "projects", nil) are
// called directly on it.
type Connection struct {
	*Resource

	httpClient   *http.Client
	tokenManager auth.TokenManager
	logger       gitlab3.Logger
	pagination   gitlab3.PaginationConfig
	root         *ResourceType
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *gitlab3.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithInsecureSkipVerify(true))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a connection using a static private token. When the config
// carries no token but a username, it logs in first.
func New(ctx context.Context, config *gitlab3.Config) (*Connection, error) {
	return NewWithTokenManager(ctx, config, auth.NewStaticTokenManager(config.Token))
}

// NewWithTokenManager creates a connection whose private token is owned by
// tokenManager.
func NewWithTokenManager(ctx context.Context, config *gitlab3.Config, tokenManager auth.TokenManager) (*Connection, error) {
	if config.URL == "" {
		return nil, gitlab3.ErrURLRequired
	}

	def := gitlab3.GitLab()
	if config.Definition != nil {
		def = *config.Definition
	}

	pagination := gitlab3.DefaultPaginationConfig()
	if config.Pagination != nil {
		pagination = config.Pagination
	}

	var logger gitlab3.Logger = noopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	baseURL := strings.TrimRight(config.URL, "/") + constants.APIPrefix

	conn := &Connection{
		httpClient:   http.NewClient(baseURL, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		logger:       logger,
		pagination:   *pagination,
	}

	root, err := conn.bind(&def, nil)
	if err != nil {
		return nil, err
	}

	conn.root = root
	conn.Resource = &Resource{conn: conn, typ: root, fields: gitlab3.NewFields()}

	if config.Token == "" && config.Username != "" {
		ok, err := conn.Login(ctx, config.Username, config.Password)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, gitlab3.Errorf(gitlab3.KindUnauthorizedRequest, "login as %s rejected", config.Username)
		}
	}

	return conn, nil
}

// Root returns the root resource type.
func (c *Connection) Root() *ResourceType {
	return c.root
}

// Types returns every bound resource type in pre-order, the root first.
func (c *Connection) Types() []*ResourceType {
	var types []*ResourceType

	var walk func(typ *ResourceType)
	walk = func(typ *ResourceType) {
		types = append(types, typ)
		for _, child := range typ.Children() {
			walk(child)
		}
	}

	walk(c.root)

	return types
}

// BaseURL returns the API root requests are sent to.
func (c *Connection) BaseURL() string {
	return c.httpClient.BaseURL()
}

// TokenManager returns the token manager owning the private token.
func (c *Connection) TokenManager() auth.TokenManager {
	return c.tokenManager
}

// Login exchanges a username or e-mail address and a password for a private
// token and installs it in the token manager. Rejected credentials return
// false without an error.
func (c *Connection) Login(ctx context.Context, identifier, secret string) (bool, error) {
	field := "login"
	if strings.Contains(identifier, "@") {
		field = "email"
	}

	resp, err := c.httpClient.Post(ctx, constants.SessionPath, map[string]string{
		field:      identifier,
		"password": secret,
	})
	if err != nil {
		if gitlab3.IsUnauthorized(err) {
			c.logger.Info("login rejected", map[string]interface{}{field: identifier})

			return false, nil
		}

		return false, err
	}

	payload, err := gitlab3.DecodePayload(resp.Body)
	if err != nil {
		return false, err
	}

	session, ok := payload.(*gitlab3.Fields)
	if !ok {
		return false, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrUnexpectedPayload, "session response is %T", payload)
	}

	raw, ok := session.Get("private_token")
	if !ok || raw == nil {
		return false, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrNoPrivateToken, "POST /session")
	}

	err = c.tokenManager.SetToken(cast.ToString(raw))
	if err != nil {
		return false, fmt.Errorf("storing private token: %w", err)
	}

	c.logger.Debug("logged in", map[string]interface{}{field: identifier})

	return true, nil
}

// request performs one call and decodes the payload.
func (c *Connection) request(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return gitlab3.DecodePayload(resp.Body)
}

// encodeQuery turns params into query values. Slices become repeated keys;
// nil values are skipped.
func encodeQuery(params gitlab3.Params) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}

	values := url.Values{}

	for key, value := range params {
		if value == nil {
			continue
		}

		items, isSlice := value.([]any)
		if strs, ok := value.([]string); ok {
			items = make([]any, len(strs))
			for i, s := range strs {
				items[i] = s
			}

			isSlice = true
		}

		if !isSlice {
			items = []any{value}
		}

		for _, item := range items {
			text, err := cast.ToStringE(item)
			if err != nil {
				return nil, &gitlab3.Error{Kind: gitlab3.KindInvalidArgument, Message: fmt.Sprintf("query parameter %q", key), Err: err}
			}

			values.Add(key, text)
		}
	}

	return values, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
