package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidPort is returned when the port is outside 0-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 0 and 65535")

	// ErrEmptyHost is returned when the server host is blank.
	ErrEmptyHost = errors.New("invalid host: must not be empty")

	// ErrInvalidLogLevel is returned for levels other than debug, info, warn, error.
	ErrInvalidLogLevel = errors.New("invalid log level: must be one of debug, info, warn, error")

	// ErrEmptyTimeFormat is returned when the summary is enabled without a time format.
	ErrEmptyTimeFormat = errors.New("invalid summary time format: must not be empty")
)
