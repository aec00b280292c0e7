// Package config holds the run's input options. Options are built once at
// the entry point from defaults, an optional YAML file, GitHub Actions style
// INPUT_* variables and command-line flags, then passed down by value.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/apkpipe/core/catalog"
)

// Options are the inputs of one resolution run.
type Options struct {
	Org               string `yaml:"org"`
	Repo              string `yaml:"repo"`
	Version           string `yaml:"version"`
	VersionPattern    string `yaml:"version_pattern"`
	IncludePrerelease bool   `yaml:"include_prerelease"`
	Bundle            bool   `yaml:"bundle"`
	Arch              string `yaml:"arch"`
	DPI               string `yaml:"dpi"`
	Filename          string `yaml:"filename"`
	Overwrite         bool   `yaml:"overwrite"`

	OutputDir string `yaml:"output_dir"`
	NotesFile string `yaml:"notes_file"`

	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the baseline options.
func Default() Options {
	return Options{
		Overwrite: true,
		BaseURL:   catalog.DefaultOrigin,
		Timeout:   30 * time.Second,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML options file over opts. Keys absent from the file keep
// their current values.
func Load(path string, opts Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %q: %w", path, err)
	}
	return opts, nil
}

// FromEnv applies GitHub Actions inputs (INPUT_ORG, INPUT_VERSIONPATTERN, ...)
// found through lookup. Unset or empty variables are ignored.
func FromEnv(opts Options, lookup func(string) (string, bool)) (Options, error) {
	get := func(name string) (string, bool) {
		v, ok := lookup("INPUT_" + strings.ToUpper(name))
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	strs := map[string]*string{
		"org":            &opts.Org,
		"repo":           &opts.Repo,
		"version":        &opts.Version,
		"versionPattern": &opts.VersionPattern,
		"arch":           &opts.Arch,
		"dpi":            &opts.DPI,
		"filename":       &opts.Filename,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"includePrerelease": &opts.IncludePrerelease,
		"bundle":            &opts.Bundle,
		"overwrite":         &opts.Overwrite,
	}
	for name, dst := range bools {
		v, ok := get(name)
		if !ok {
			continue
		}
		b, err := ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("input %s: %w", name, err)
		}
		*dst = b
	}
	return opts, nil
}

// ParseBool accepts the YAML 1.2 core schema booleans, as the Actions
// toolkit does for boolean inputs.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean (use true or false)", s)
}

// Validate checks that the options describe a runnable resolution.
func (o Options) Validate() error {
	var errs []error
	if strings.TrimSpace(o.Org) == "" {
		errs = append(errs, errors.New("org is required"))
	}
	if strings.TrimSpace(o.Repo) == "" {
		errs = append(errs, errors.New("repo is required"))
	}
	if o.VersionPattern != "" {
		if _, err := regexp.Compile(o.VersionPattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid version pattern %q: %w", o.VersionPattern, err))
		}
	}
	if o.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	return errors.Join(errs...)
}
