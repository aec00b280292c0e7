// Package output downloads the resolved artifact to disk.
// The destination name comes from the caller or, failing that, from the
// response's final URL after redirects.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
	"github.com/gaurav-prasanna/apkpipe/core/naming"
)

// archiveExtensions are the artifact kinds the catalog serves.
var archiveExtensions = []string{".apk", ".apkm"}

// Result describes the outcome of a download.
type Result struct {
	Filename string // name as resolved, relative to the output directory
	Path     string // destination on disk
	Skipped  bool   // destination existed and overwrite was off
}

// Downloader writes artifacts into OutputDir.
type Downloader struct {
	OutputDir string
	fetcher   core.Fetcher
	log       *slog.Logger
}

// New creates a Downloader targeting outputDir. An empty outputDir means
// the working directory; a non-empty one is created if missing.
func New(fetcher core.Fetcher, outputDir string, logger *slog.Logger) (*Downloader, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	return &Downloader{
		OutputDir: outputDir,
		fetcher:   fetcher,
		log:       logging.OrDiscard(logger),
	}, nil
}

// Download fetches uri and streams it to filename. With overwrite off, an
// existing destination turns the call into a skip, which is not an error.
func (d *Downloader) Download(ctx context.Context, uri, filename string, overwrite bool) (Result, error) {
	if filename != "" && !filepath.IsLocal(filename) {
		return Result{}, &core.DownloadError{URL: uri, Filename: filename, Reason: "filename escapes the output directory"}
	}
	if filename != "" && !overwrite {
		if res, skip := d.skip(filename); skip {
			return res, nil
		}
	}

	stream, err := d.fetcher.Open(ctx, uri)
	if err != nil {
		return Result{}, &core.DownloadError{URL: uri, Filename: filename, Reason: "request failed", Err: err}
	}
	if stream.Body != nil {
		defer stream.Body.Close()
	}

	name := filename
	if name == "" {
		name = naming.FromURI(stream.FinalURL)
		d.log.Debug("derived filename from final url", "url", stream.FinalURL, "filename", name)
	}
	if name == "" {
		return Result{}, &core.DownloadError{URL: uri, Reason: "could not derive a filename from " + stream.FinalURL}
	}
	if filename == "" && !isPlainName(name) {
		return Result{}, &core.DownloadError{URL: uri, Filename: name, Reason: "derived filename is not a plain file name"}
	}

	if !overwrite {
		if res, skip := d.skip(name); skip {
			return res, nil
		}
	}

	if stream.Body == nil {
		return Result{}, &core.DownloadError{URL: uri, Filename: name, Reason: "response has no body"}
	}
	if !HasArchiveExtension(name) {
		return Result{}, &core.DownloadError{
			URL:      uri,
			Filename: name,
			Reason:   "filename must end in " + strings.Join(archiveExtensions, " or "),
		}
	}

	dest := d.path(name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, &core.DownloadError{URL: uri, Filename: name, Reason: "creating directory", Err: err}
	}
	n, err := writeFile(dest, stream.Body)
	if err != nil {
		return Result{}, &core.DownloadError{URL: uri, Filename: name, Reason: "writing file", Err: err}
	}

	d.log.Info("downloaded artifact", "path", dest, "bytes", n)
	return Result{Filename: name, Path: dest}, nil
}

// HasArchiveExtension reports whether name ends in a recognized extension.
func HasArchiveExtension(name string) bool {
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isPlainName reports whether a name taken from a URL is a single local path
// element. Decoded %2F and backslashes would otherwise select a directory.
func isPlainName(name string) bool {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.IsLocal(name)
}

func (d *Downloader) path(name string) string {
	if d.OutputDir == "" {
		return name
	}
	return filepath.Join(d.OutputDir, name)
}

func (d *Downloader) skip(name string) (Result, bool) {
	dest := d.path(name)
	if _, err := os.Stat(dest); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.log.Debug("stat destination", "path", dest, "error", err)
		}
		return Result{}, false
	}
	d.log.Info("download has been skipped because file already exists", "path", dest)
	return Result{Filename: name, Path: dest, Skipped: true}, true
}

// writeFile truncates dest and copies r into it.
func writeFile(dest string, r io.Reader) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
