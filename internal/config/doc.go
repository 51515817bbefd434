// Package config provides configuration structures and utilities for the
// forecast pipeline. It defines the input schema expectations, the model
// search bounds, runner concurrency settings, and report output preferences.
package config
