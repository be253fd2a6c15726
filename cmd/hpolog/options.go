package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rickchristie/hpolog/resource"
)

// Options configures the CLI. They are read from a YAML file and can be
// overridden by flags.
type Options struct {
	// ResourceAttr names the resource attribute of extended configs. Empty
	// means configs are never extended.
	ResourceAttr string `yaml:"resource_attr"`
	// ResourceMin and ResourceMax bound resource values when ResourceMax > 0.
	ResourceMin int64 `yaml:"resource_min"`
	ResourceMax int64 `yaml:"resource_max"`

	// Checkpoint is the default save/load location of the repl.
	Checkpoint string `yaml:"checkpoint"`
	// GCSCredentials is a service account key for gs:// checkpoints.
	GCSCredentials string `yaml:"gcs_credentials"`

	// ReportFile receives every flushed report, in addition to the terminal.
	ReportFile string `yaml:"report_file"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "console" or "json"

	HistoryFile string `yaml:"history_file"`
}

// DefaultOptions returns the options used when no file is given.
func DefaultOptions() Options {
	return Options{
		LogLevel:    "warn",
		LogFormat:   "console",
		HistoryFile: ".hpolog_history",
	}
}

// LoadOptions reads YAML options from path on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options %s: %w", path, err)
	}
	return opts, opts.Validate()
}

// Validate checks option values.
func (o Options) Validate() error {
	if _, err := zapcore.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if o.LogFormat != "console" && o.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", o.LogFormat)
	}
	if o.ResourceMax > 0 && o.ResourceAttr == "" {
		return fmt.Errorf("resource_max set without resource_attr")
	}
	if o.ResourceMax > 0 && o.ResourceMin > o.ResourceMax {
		return fmt.Errorf("resource_min %d greater than resource_max %d", o.ResourceMin, o.ResourceMax)
	}
	return nil
}

// Extractor returns the resource attribute, or nil if none is configured.
func (o Options) Extractor() *resource.Attribute {
	if o.ResourceAttr == "" {
		return nil
	}
	attr := resource.NewAttribute(o.ResourceAttr)
	if o.ResourceMax > 0 {
		attr.WithRange(o.ResourceMin, o.ResourceMax)
	}
	return attr
}

// Logger builds the zap logger described by the options. Logs go to stderr.
func (o Options) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if o.LogFormat == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}
