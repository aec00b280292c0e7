// Package catalog reads release listings and variant tables from the catalog.
//
// Listing and variant order is always the document order; the catalog lists
// newest first, and callers rely on that when taking the first match.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/extract"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
	"github.com/gaurav-prasanna/apkpipe/core/sdk"
)

// Resolver lists versions and variants for an org/repo.
type Resolver struct {
	fetcher core.Fetcher
	origin  string
	log     *slog.Logger
}

// New creates a Resolver against origin (DefaultOrigin when empty).
func New(fetcher core.Fetcher, origin string, logger *slog.Logger) *Resolver {
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Resolver{
		fetcher: fetcher,
		origin:  strings.TrimSuffix(origin, "/"),
		log:     logging.OrDiscard(logger),
	}
}

// Origin returns the catalog origin the resolver fetches from.
func (r *Resolver) Origin() string {
	return r.origin
}

// ListVersions returns the app's version listing in document order.
func (r *Resolver) ListVersions(ctx context.Context, org, repo string) ([]core.VersionEntry, error) {
	pageURL := r.origin + "/apk/" + org + "/" + repo
	r.log.Debug("fetching versions", "url", pageURL)

	doc, err := r.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	links := doc.FindAll(versionLinks)
	entries := make([]core.VersionEntry, 0, len(links))
	for _, a := range links {
		href, _ := a.Attr("href")
		entries = append(entries, core.VersionEntry{Text: a.Text(), Path: href})
	}

	r.log.Debug("found versions", "count", len(entries))
	return entries, nil
}

// ListVariants fetches a release page and returns its variants of the
// requested kind. See FetchRelease for how versionOrPath is interpreted.
func (r *Resolver) ListVariants(ctx context.Context, org, repo, versionOrPath string, wantBundle bool) ([]core.VariantRecord, error) {
	page, err := r.FetchRelease(ctx, org, repo, versionOrPath)
	if err != nil {
		return nil, err
	}
	return page.Variants(wantBundle), nil
}

// FetchRelease fetches a release page. A versionOrPath starting with "/" is
// fetched as-is; anything else is treated as a version number and turned
// into the canonical release path.
func (r *Resolver) FetchRelease(ctx context.Context, org, repo, versionOrPath string) (*ReleasePage, error) {
	path := versionOrPath
	if !IsPath(path) {
		path = ReleasePath(org, repo, versionOrPath)
	}
	pageURL := r.origin + path
	r.log.Debug("fetching release page", "url", pageURL)

	doc, err := r.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return &ReleasePage{URL: pageURL, doc: doc, log: r.log}, nil
}

func (r *Resolver) document(ctx context.Context, pageURL string) (*extract.Document, error) {
	res, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &core.CatalogFormatError{URL: pageURL, Err: err}
	}
	if strings.TrimSpace(res.HTML) == "" {
		return nil, &core.CatalogFormatError{URL: pageURL, Err: fmt.Errorf("empty document")}
	}
	doc, err := extract.Parse(res.HTML)
	if err != nil {
		return nil, &core.CatalogFormatError{URL: pageURL, Err: err}
	}
	return doc, nil
}

// ReleasePage is a fetched release page.
type ReleasePage struct {
	URL string
	doc *extract.Document
	log *slog.Logger
}

// Variants returns the complete variant rows whose kind badge reads "BUNDLE"
// (wantBundle) or "APK". Rows missing any of variant, arch, version, dpi or
// link are dropped.
func (p *ReleasePage) Variants(wantBundle bool) []core.VariantRecord {
	kind := kindAPK
	if wantBundle {
		kind = kindBundle
	}
	badge := kindBadge.WithText(kind)

	var records []core.VariantRecord
	rows := p.doc.FindAll(variantRows)
	for _, row := range rows {
		if !row.Has(badge) {
			continue
		}
		rec, missing := parseRow(row)
		if missing != "" {
			p.log.Debug("skipped incomplete row", "missing", missing,
				"variant", rec.Variant, "arch", rec.Arch, "version", rec.Version, "dpi", rec.DPI, "url", rec.URL)
			continue
		}
		p.log.Debug("added variant", "variant", rec.Variant, "arch", rec.Arch, "dpi", rec.DPI)
		records = append(records, rec)
	}

	p.log.Debug("parsed variants", "kind", kind, "rows", len(rows), "count", len(records))
	return records
}

// NotesHTML returns the outer HTML of the release notes block, if present.
func (p *ReleasePage) NotesHTML() (string, bool) {
	el, ok := p.doc.FindOne(releaseNotes)
	if !ok {
		return "", false
	}
	out, err := el.OuterHTML()
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// parseRow reads the five positional cells of a variant row plus the
// signature and date from its last cell. missing names the first required
// field that is empty.
func parseRow(row extract.Element) (rec core.VariantRecord, missing string) {
	cells := row.Find(tableCells)
	cell := func(i int) extract.Element {
		if i < len(cells) {
			return cells[i]
		}
		return extract.Element{}
	}

	rec.Variant = cell(0).Text()
	rec.Arch = cell(1).Text()
	rec.Version = cell(2).Text()
	rec.DPI = cell(3).Text()
	if a, ok := cell(4).FindOne(anyLink); ok {
		href, _ := a.Attr("href")
		rec.URL = strings.TrimSpace(href)
	}

	switch {
	case rec.Variant == "":
		return rec, "variant"
	case rec.Arch == "":
		return rec, "arch"
	case rec.Version == "":
		return rec, "version"
	case rec.DPI == "":
		return rec, "dpi"
	case rec.URL == "":
		return rec, "url"
	}

	if text, _ := sdk.Platform(rec.Version); text != "" {
		rec.MinSDKText = text
		rec.MinSDKAPILevel, _ = sdk.APILevel(text)
	}

	if len(cells) > 0 {
		last := cells[len(cells)-1]
		rec.Signature = readSignature(last)
		rec.Date = readDate(last)
	}
	return rec, ""
}

func readSignature(cell extract.Element) string {
	el, ok := cell.FindOne(signature)
	if !ok {
		return ""
	}
	if title, ok := el.Attr(signatureAttr); ok {
		if m := signaturePattern.FindStringSubmatch(title); m != nil {
			return m[1]
		}
	}
	return el.Text()
}

func readDate(cell extract.Element) string {
	el, ok := cell.FindOne(releaseDate)
	if !ok {
		return ""
	}
	if v, ok := el.Attr(dateAttr); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return el.Text()
}
