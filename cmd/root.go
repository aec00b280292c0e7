// Package cmd implements the CLI commands for apkpipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/apkpipe/core/config"
	"github.com/gaurav-prasanna/apkpipe/core/fetch"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
)

var rootCmd = &cobra.Command{
	Use:   "apkpipe",
	Short: "apkpipe: resolve and download app releases from an APK catalog",
	Long: `apkpipe resolves an app release from the APKMirror catalog into a single
APK or bundle file: it picks a version, picks a variant, follows the download
gateway pages and writes the artifact to disk.

Inputs come from flags, a YAML --config file, or GitHub Actions INPUT_*
variables (flags win).

Usage:
  apkpipe download --org <org> --repo <repo> [flags]`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML file with input options")
	pf.String("org", "", "Catalog organization (e.g. google-inc)")
	pf.String("repo", "", "Catalog app/repository (e.g. youtube)")
	pf.String("base-url", "", "Catalog origin (default https://www.apkmirror.com)")
	pf.String("user-agent", "", "User-Agent sent to the catalog")
	pf.Duration("timeout", 0, "Timeout per catalog page fetch (default 30s)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.String("log-format", "", "Log format: text or json (default text)")
	pf.Bool("json", false, "Print results as JSON")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadOptions layers defaults, --config, INPUT_* variables and explicitly
// set flags, in that order.
func loadOptions(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if opts, err = config.Load(path, opts); err != nil {
			return opts, err
		}
	}

	opts, err := config.FromEnv(opts, os.LookupEnv)
	if err != nil {
		return opts, err
	}

	applyFlags(cmd, &opts)
	return opts, nil
}

// applyFlags copies every flag the user set onto opts.
func applyFlags(cmd *cobra.Command, opts *config.Options) {
	fs := cmd.Flags()
	strs := map[string]*string{
		"org":             &opts.Org,
		"repo":            &opts.Repo,
		"version":         &opts.Version,
		"version-pattern": &opts.VersionPattern,
		"arch":            &opts.Arch,
		"dpi":             &opts.DPI,
		"filename":        &opts.Filename,
		"output-dir":      &opts.OutputDir,
		"notes-file":      &opts.NotesFile,
		"base-url":        &opts.BaseURL,
		"user-agent":      &opts.UserAgent,
		"log-level":       &opts.LogLevel,
		"log-format":      &opts.LogFormat,
	}
	for name, dst := range strs {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}

	bools := map[string]*bool{
		"include-prerelease": &opts.IncludePrerelease,
		"bundle":             &opts.Bundle,
		"overwrite":          &opts.Overwrite,
	}
	for name, dst := range bools {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}

	if fs.Changed("timeout") {
		opts.Timeout, _ = fs.GetDuration("timeout")
	}
}

// setup builds the logger and fetcher shared by every subcommand.
func setup(cmd *cobra.Command, opts config.Options) (*slog.Logger, *fetch.HTTPFetcher, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return logger, fetch.New(opts.UserAgent, opts.Timeout), nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
