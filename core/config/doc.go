// Package config loads process settings from a .env file and the
// environment. Variables already present in the environment take precedence
// over the file.
package config
