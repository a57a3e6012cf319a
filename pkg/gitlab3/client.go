package gitlab3

import (
	"time"
)

// Access levels for group and project members.
const (
	AccessLevelGuest     = 10
	AccessLevelReporter  = 20
	AccessLevelDeveloper = 30
	AccessLevelMaster    = 40
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a connection.
//
// Zero values are sensible defaults for everything except URL.
type Config struct {
	// Required fields
	// URL: base URL of the GitLab instance (e.g., "https://gitlab.example.com").
	// glclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present. Requests go to URL + "/api/v3".
	URL string

	// Authentication options (provide one)
	// Token: private token sent in the PRIVATE-TOKEN header.
	Token string
	// Username and Password: when Token is empty and both are set, the
	// connection logs in through /session during construction. Username may
	// also be an e-mail address.
	Username string
	Password string

	// Optional configurations
	// Timeout: bound on every HTTP round-trip. Expiry surfaces as a
	// TransportError.
	Timeout time.Duration
	// RetryMax: number of transport-level retries for 429 and 5xx responses
	// and connection errors. Zero disables retries, which is the default:
	// failures are reported to the caller immediately. A positive value opts
	// out of that contract, so a ServerError or TransportError is only
	// returned once the retries are exhausted, and a retried non-idempotent
	// request (POST, PUT, DELETE) may be applied more than once.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and the engine.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped, and only when
	// GITLAB3_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// Pagination: end-of-list heuristics for unbounded listing. Nil selects
	// DefaultPaginationConfig.
	Pagination *PaginationConfig
	// Interceptors: optional request/response hooks run around every call.
	Interceptors *InterceptorChain
	// Definition: resource tree to bind. Nil selects GitLab().
	Definition *ResourceDefinition
}
