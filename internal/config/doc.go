// Package config supplies key/value settings to the rest of ash.
//
// Settings come from ASH_CFG_* environment variables, optionally layered
// over a YAML file. Callers depend on the Provider interface only, so tests
// can inject a Map.
package config
