// Package core defines the resolution pipeline types and interfaces for apkpipe.
// Each stage of the pipeline is a small, testable unit:
// list versions → pick version → list variants → pick variant → follow
// gateway chain → name → download.
package core

import (
	"context"
	"io"
	"net/http"
)

// FetchResult holds a fetched markup document and its response metadata.
type FetchResult struct {
	URL        string // requested URL
	FinalURL   string // URL after transport-level redirects
	StatusCode int
	Header     http.Header
	HTML       string
}

// Stream is an open artifact response. Callers must close Body.
type Stream struct {
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Fetcher retrieves documents and artifact streams by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
	Open(ctx context.Context, url string) (*Stream, error)
}

// VersionEntry is one row of the catalog's version listing.
type VersionEntry struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

// ResolvedVersion is the version chosen from the listing, with the fields
// parsed out of its display text. APILevel is 0 when unknown.
type ResolvedVersion struct {
	Number      string `json:"number"`
	SDKText     string `json:"sdk_text,omitempty"`
	APILevel    int    `json:"api_level,omitempty"`
	ReleasePath string `json:"release_path,omitempty"`
}

// VariantRecord is one complete row of a release's variant table.
type VariantRecord struct {
	Variant        string `json:"variant"`
	Arch           string `json:"arch"`
	Version        string `json:"version"`
	DPI            string `json:"dpi"`
	URL            string `json:"url"`
	Date           string `json:"date,omitempty"`
	Signature      string `json:"signature,omitempty"`
	MinSDKText     string `json:"min_sdk_text,omitempty"`
	MinSDKAPILevel int    `json:"min_sdk,omitempty"`
}

// ResolvedRelease is the chosen variant plus the effective API level:
// the variant's own level when known, otherwise the version-level one.
type ResolvedRelease struct {
	Record   VariantRecord
	Version  string // resolved app version, may be empty
	APILevel int
}

// EffectiveAPILevel returns the variant-level API level if present,
// else the version-level one.
func EffectiveAPILevel(rec VariantRecord, v ResolvedVersion) int {
	if rec.MinSDKAPILevel > 0 {
		return rec.MinSDKAPILevel
	}
	return v.APILevel
}

// Outputs are the values reported after a successful download.
type Outputs struct {
	Filename  string `json:"filename"`
	Version   string `json:"version"`
	Variant   string `json:"variant"`
	Arch      string `json:"arch"`
	DPI       string `json:"dpi"`
	MinSDK    int    `json:"minSdk,omitempty"`
	Date      string `json:"date,omitempty"`
	Signature string `json:"signature,omitempty"`
}
