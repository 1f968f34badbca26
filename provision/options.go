package provision

import "os"

// Options holds the Writer configuration.
type Options struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// FileMode is the permission of written files
	FileMode os.FileMode
}

// defaultOptions returns the default Writer options.
func defaultOptions() Options {
	return Options{
		FileMode: 0o644,
	}
}

// Option is a functional option for configuring the Writer.
type Option func(*Options)

// WithLogger sets a logger for the Writer operations.
//
// Example:
//
//	w := provision.New(ihex.GoHex{}, provision.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithFileMode sets the permission of written files. Default is 0644.
//
// Example:
//
//	w := provision.New(ihex.GoHex{}, provision.WithFileMode(0o600))
func WithFileMode(mode os.FileMode) Option {
	return func(o *Options) {
		if mode != 0 {
			o.FileMode = mode
		}
	}
}
