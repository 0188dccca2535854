// Package config loads and validates the tutor's settings from defaults,
// an optional config.yaml and TUTOR_* environment variables using viper.
package config
