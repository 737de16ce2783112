// Package config defines the format-agnostic configuration model for the
// composer, along with the Loader interface for reading it from a file.
// The model holds everything that shapes an expansion besides the launch
// description itself: package search paths, the binding policy, default
// argument overrides, and log settings. Concrete implementations, such as
// for HCL, live in separate packages.
package config
