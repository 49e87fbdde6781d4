package config

import "errors"

var (
	// ErrUnknownKey indicates a key outside the supported settings.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalid indicates a setting holds a value the commands cannot use.
	ErrInvalid = errors.New("invalid configuration")

	// ErrNotDirectory indicates output_dir points at a file.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrNotWritable indicates output_dir cannot be written to.
	ErrNotWritable = errors.New("directory is not writable")
)
