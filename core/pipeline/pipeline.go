// Package pipeline runs one resolution end to end:
// list versions → pick version → list variants → pick variant →
// gateway chain → name → download.
//
// Every step waits for the previous one, since each target URL comes out of
// the page fetched before it. Any failure ends the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/catalog"
	"github.com/gaurav-prasanna/apkpipe/core/chain"
	"github.com/gaurav-prasanna/apkpipe/core/config"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
	"github.com/gaurav-prasanna/apkpipe/core/naming"
	"github.com/gaurav-prasanna/apkpipe/core/normalize"
	"github.com/gaurav-prasanna/apkpipe/core/output"
	"github.com/gaurav-prasanna/apkpipe/core/pick"
)

// Pipeline wires the resolution stages together.
type Pipeline struct {
	Catalog    *catalog.Resolver
	Chain      *chain.Resolver
	Downloader *output.Downloader
	log        *slog.Logger
}

// New builds a Pipeline for opts on top of fetcher.
func New(fetcher core.Fetcher, opts config.Options, logger *slog.Logger) (*Pipeline, error) {
	log := logging.OrDiscard(logger)
	dl, err := output.New(fetcher, opts.OutputDir, log)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Catalog:    catalog.New(fetcher, opts.BaseURL, log),
		Chain:      chain.New(fetcher, opts.BaseURL, log),
		Downloader: dl,
		log:        log,
	}, nil
}

// Result is the outcome of a run. Outputs is empty when Skipped.
type Result struct {
	Outputs   core.Outputs
	Release   core.ResolvedRelease
	Skipped   bool
	Path      string
	NotesPath string
}

// Run resolves and downloads the release described by opts.
func (p *Pipeline) Run(ctx context.Context, opts config.Options) (Result, error) {
	p.log.Info("starting download process",
		"org", opts.Org, "repo", opts.Repo,
		"version", orDefault(opts.Version, "(auto-detect)"),
		"pattern", orDefault(opts.VersionPattern, "(none)"),
		"include_prerelease", opts.IncludePrerelease, "bundle", opts.Bundle,
		"filename", orDefault(opts.Filename, "(auto)"))

	version, ref, err := p.resolveVersion(ctx, opts)
	if err != nil {
		return Result{}, err
	}
	p.log.Info("selected version", "version", version.Number, "release", ref)

	page, err := p.Catalog.FetchRelease(ctx, opts.Org, opts.Repo, ref)
	if err != nil {
		return Result{}, err
	}
	records := page.Variants(opts.Bundle)
	rec, err := pick.Variant(records, pick.VariantCriteria{Arch: opts.Arch, DPI: opts.DPI}, p.log)
	if err != nil {
		return Result{}, fmt.Errorf("%s version %s: %w", opts.Repo, orDefault(version.Number, ref), err)
	}
	p.log.Info("using variant", "variant", rec.Variant, "arch", rec.Arch, "dpi", rec.DPI)

	rel := core.ResolvedRelease{
		Record:   rec,
		Version:  version.Number,
		APILevel: core.EffectiveAPILevel(rec, version),
	}

	uri, err := p.Chain.Resolve(ctx, rec.URL)
	if err != nil {
		return Result{}, err
	}

	dl, err := p.Downloader.Download(ctx, uri, naming.Name(opts.Filename, rel), opts.Overwrite)
	if err != nil {
		return Result{}, err
	}
	if dl.Skipped {
		return Result{Release: rel, Skipped: true, Path: dl.Path}, nil
	}

	res := Result{
		Release: rel,
		Path:    dl.Path,
		Outputs: core.Outputs{
			Filename:  dl.Path,
			Version:   orDefault(version.Number, rec.Version),
			Variant:   rec.Variant,
			Arch:      rec.Arch,
			DPI:       rec.DPI,
			MinSDK:    rel.APILevel,
			Date:      rec.Date,
			Signature: rec.Signature,
		},
	}

	if opts.NotesFile != "" {
		written, err := p.writeNotes(page, opts, version.Number)
		if err != nil {
			return res, err
		}
		if written {
			res.NotesPath = opts.NotesFile
		}
	}
	return res, nil
}

// resolveVersion returns the chosen version and the release reference to
// fetch: the listing's path when auto-detected, else the explicit version.
// An explicit version bypasses prerelease and pattern filtering.
func (p *Pipeline) resolveVersion(ctx context.Context, opts config.Options) (core.ResolvedVersion, string, error) {
	if opts.Version != "" {
		return core.ResolvedVersion{Number: opts.Version}, opts.Version, nil
	}

	entries, err := p.Catalog.ListVersions(ctx, opts.Org, opts.Repo)
	if err != nil {
		return core.ResolvedVersion{}, "", err
	}
	v, err := pick.Version(entries, pick.VersionCriteria{
		Pattern:           opts.VersionPattern,
		IncludePrerelease: opts.IncludePrerelease,
	}, p.log)
	if err != nil {
		return core.ResolvedVersion{}, "", err
	}

	switch {
	case v.ReleasePath != "":
		return v, v.ReleasePath, nil
	case v.Number != "":
		return v, v.Number, nil
	}
	return core.ResolvedVersion{}, "", fmt.Errorf("version entry has neither a link nor a version number")
}

func (p *Pipeline) writeNotes(page *catalog.ReleasePage, opts config.Options, version string) (bool, error) {
	fragment, ok := page.NotesHTML()
	if !ok {
		p.log.Debug("release page has no notes", "url", page.URL)
		return false, nil
	}
	notes, err := normalize.ReleaseNotes(opts.Repo, version, fragment)
	if err != nil {
		return false, fmt.Errorf("release notes: %w", err)
	}
	if err := normalize.WriteNotes(opts.NotesFile, notes); err != nil {
		return false, fmt.Errorf("release notes: %w", err)
	}
	p.log.Info("wrote release notes", "path", opts.NotesFile)
	return true, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
