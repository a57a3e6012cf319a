package constants

import "errors"

// Host and configuration errors.
var (
	ErrNoHostsConfigured = errors.New("no GitLab hosts configured, use 'gitlab3 login' to add one")
	ErrHostNotFound      = errors.New("host configuration not found")
	ErrNoTokenForHost    = errors.New("no private token stored for this host, please run 'gitlab3 login' again")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrLoginRejected     = errors.New("login rejected: invalid credentials")
	ErrPasswordRequired  = errors.New("password is required")
	ErrUsernameRequired  = errors.New("username is required")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Argument errors.
var (
	ErrInvalidKeyValue = errors.New("expected key=value")
	ErrInvalidRef      = errors.New("expected name=id")
	ErrNoFindCriteria  = errors.New("at least one key=value criterion is required")
	ErrNotFound        = errors.New("no matching resource found")
)
