// Package env reads single process environment variables. Structured
// configuration lives in pkg/config; this exists for the pieces that
// must resolve before config does, like the logger bootstrap.
package env

import "os"

// Get looks up key in the environment, substituting fallback when the
// variable is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
