// Package postgreswrapper abstracts over the supported database adapters
// for the mirror integration tests: it creates a Mirror backed by the
// adapter selected through the ADAPTER_TYPE environment variable and
// provides schema bootstrap, cleanup, and seeding helpers.
package postgreswrapper
