package config

import "errors"

// Sentinel errors for configuration loading and validation, in the
// teacher's errors.go style: one exported var per failure class,
// wrapped with context via fmt.Errorf("%w: ...") at the call site.
var (
	ErrConfigFile         = errors.New("Error Reading Config File")
	ErrDecode             = errors.New("Error Decoding Config")
	ErrInvalidConfig      = errors.New("Error Invalid Configuration")
	ErrInvalidEnvironment = errors.New("Error Invalid Environment Value")
)
