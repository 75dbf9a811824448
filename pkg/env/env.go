// Package env reads raw process environment variables. It covers the few
// knobs resolved before the typed config loads, like the PORT override the
// hosting platform injects.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
