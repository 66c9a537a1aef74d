// Package config loads and validates environment-driven configuration.
package config
