// Package config loads the YAML configuration file shared by every atlas
// command.
package config
