// Package chain follows the catalog's download gateway pages from a variant
// detail page to the direct file URI.
//
// Two hops, each a fetch plus one extracted link:
//
//	variant page --a.downloadButton--> download page --.card-with-tabs a--> file
//
// A missing link means the page layout changed; it is fatal and not retried.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/catalog"
	"github.com/gaurav-prasanna/apkpipe/core/extract"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
)

// Stage names reported in LinkNotFoundError.
const (
	StageDownloadPage = "download page"
	StageDirectURL    = "direct download"
)

var (
	downloadButton = extract.MustCompile(`a.downloadButton`)
	tabbedLink     = extract.MustCompile(`.card-with-tabs a[href]`)
)

type hop struct {
	stage string
	query extract.Query
}

var hops = []hop{
	{stage: StageDownloadPage, query: downloadButton},
	{stage: StageDirectURL, query: tabbedLink},
}

// Resolver walks the gateway chain.
type Resolver struct {
	fetcher core.Fetcher
	origin  string
	log     *slog.Logger
}

// New creates a Resolver against origin (the catalog's default when empty).
func New(fetcher core.Fetcher, origin string, logger *slog.Logger) *Resolver {
	if origin == "" {
		origin = catalog.DefaultOrigin
	}
	return &Resolver{
		fetcher: fetcher,
		origin:  strings.TrimSuffix(origin, "/"),
		log:     logging.OrDiscard(logger),
	}
}

// Resolve returns the direct file URI for a variant page path.
func (r *Resolver) Resolve(ctx context.Context, variantPath string) (string, error) {
	current := variantPath
	for _, h := range hops {
		href, err := r.follow(ctx, current, h)
		if err != nil {
			return "", err
		}
		current = href
	}

	final := catalog.JoinOrigin(r.origin, current)
	r.log.Debug("resolved direct url", "url", final)
	return final, nil
}

func (r *Resolver) follow(ctx context.Context, href string, h hop) (string, error) {
	pageURL := catalog.JoinOrigin(r.origin, href)
	r.log.Debug("following gateway", "stage", h.stage, "url", pageURL)

	res, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", h.stage, err)
	}
	doc, err := extract.Parse(res.HTML)
	if err != nil {
		return "", fmt.Errorf("%s: %w", h.stage, err)
	}

	link, ok := doc.FindOne(h.query)
	if !ok {
		return "", &core.LinkNotFoundError{Stage: h.stage, URL: pageURL}
	}
	next, _ := link.Attr("href")
	next = strings.TrimSpace(next)
	if next == "" {
		return "", &core.LinkNotFoundError{Stage: h.stage, URL: pageURL}
	}
	return next, nil
}
