package core

import "fmt"

// CatalogFormatError reports a listing or release page that could not be
// fetched or parsed.
type CatalogFormatError struct {
	URL string
	Err error
}

func (e *CatalogFormatError) Error() string {
	return fmt.Sprintf("catalog page %s: %v", e.URL, e.Err)
}

func (e *CatalogFormatError) Unwrap() error { return e.Err }

// NoVersionFoundError reports that no version entry survived filtering.
type NoVersionFoundError struct {
	Pattern string
}

func (e *NoVersionFoundError) Error() string {
	pattern := e.Pattern
	if pattern == "" {
		pattern = "any"
	}
	return "could not find version matching pattern: " + pattern
}

// NoVariantFoundError reports that no variant record survived filtering.
// Filter names the filter that emptied the set ("arch", "dpi"), or is empty
// when the release listed no variants at all.
type NoVariantFoundError struct {
	Filter string
	Value  string
}

func (e *NoVariantFoundError) Error() string {
	if e.Filter == "" {
		return "no variants found"
	}
	return fmt.Sprintf("no variant found for %s %q", e.Filter, e.Value)
}

// LinkNotFoundError reports a gateway page that lacks its expected link.
type LinkNotFoundError struct {
	Stage string
	URL   string
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s link on %s", e.Stage, e.URL)
}

// DownloadError reports a terminal fetch that could not be written.
type DownloadError struct {
	URL      string
	Filename string
	Reason   string
	Err      error
}

func (e *DownloadError) Error() string {
	msg := fmt.Sprintf("download %s to %q: %s", e.URL, e.Filename, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DownloadError) Unwrap() error { return e.Err }
