// Package config provides Postgres connection configurations for the
// mirror integration tests, for all supported database adapters.
package config
