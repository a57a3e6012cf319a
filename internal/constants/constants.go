package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".gitlab3"

	// ConfigFileName is the CLI config file name, without extension.
	ConfigFileName = "config"
)

// API constants.
const (
	// APIPrefix is appended to the instance URL to form the API base URL.
	APIPrefix = "/api/v3"

	// HeaderPrivateToken carries the private token on every request.
	HeaderPrivateToken = "PRIVATE-TOKEN"

	// HeaderSudo carries the impersonated user.
	HeaderSudo = "SUDO"

	// SessionPath is the login endpoint.
	SessionPath = "/session"

	// DefaultUserAgent is sent unless the caller overrides it.
	DefaultUserAgent = "gitlab3-go/1.0"

	// DevModeEnv enables development-only settings such as skipping TLS
	// verification.
	DevModeEnv = "GITLAB3_DEV_MODE"

	// EnvPrefix is the viper environment prefix for the CLI.
	EnvPrefix = "GITLAB3"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits, used only once retries are enabled.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 60

	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2

	// RefSplitParts is the number of parts when splitting name=id references.
	RefSplitParts = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanOne is accepted wherever BooleanTrue is.
	BooleanOne = "1"
)
