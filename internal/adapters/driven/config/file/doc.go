// Package file provides a file-based configuration store using TOML.
// Configuration lives in ~/.tetontracker/config.toml by default and is
// exposed through flattened dot-notation keys.
package file
