// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the DISTPRIMES_ prefix) to the flag
// name(s) it stands in for and a function that applies the value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

var envOverrides = []envOverride{
	{"NAME", []string{"name"}, func(c *AppConfig, v string) {
		c.Name = v
	}},
	{"HELPER", []string{"helper"}, func(c *AppConfig, v string) {
		c.HelperPath = v
	}},
	{"WAIT_TIMEOUT", []string{"wait-timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.WaitTimeout = parsed
		}
	}},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) {
		c.MetricsFile = v
	}},
	{"TRACE_FILE", []string{"trace-file"}, func(c *AppConfig, v string) {
		c.TraceFile = v
	}},
	{"VERBOSE", []string{"v", "verbose"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
	{"PROGRESS", []string{"progress"}, func(c *AppConfig, v string) {
		c.Progress = parseBoolEnv(v, c.Progress)
	}},
}

// parseBoolEnv accepts "true", "1", "yes" as true and "false", "0", "no" as
// false (case-insensitive). Anything else returns defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values for flags that were
// not set on the command line: CLI flags > environment > defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}

// NameFromEnv returns the resource name prefix for the worker helper, which
// inherits it from the coordinator through DISTPRIMES_NAME.
func NameFromEnv() string {
	if v := os.Getenv(EnvPrefix + "NAME"); v != "" {
		return v
	}
	return DefaultName
}

// VerboseFromEnv reports whether DISTPRIMES_VERBOSE enables debug logging.
func VerboseFromEnv() bool {
	return parseBoolEnv(os.Getenv(EnvPrefix+"VERBOSE"), false)
}
