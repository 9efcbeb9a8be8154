// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// NAVIHIRE_WS_URL, NAVIHIRE_API_URL and NAVIHIRE_IDENTITY override the file after expansion.
package config
