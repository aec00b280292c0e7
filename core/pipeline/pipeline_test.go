package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/config"
	"github.com/gaurav-prasanna/apkpipe/core/fetch"
)

func listingPage(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="primary"><div class="listWidget p-relative"><div>`)
	for _, title := range titles {
		slug := strings.ToLower(strings.NewReplacer(" ", "-", ".", "-").Replace(title))
		fmt.Fprintf(&b, `<div class="appRow"><div class="table-row">`+
			`<div class="table-cell"><img src="/i.png"></div>`+
			`<div class="table-cell"><div><h5><a href="/apk/example/app/%s-release/">%s</a></h5></div></div>`+
			`</div></div>`, slug, title)
	}
	b.WriteString(`</div></div></div></body></html>`)
	return b.String()
}

func variantRow(kind, variant, arch, minVersion, dpi, href string) string {
	return fmt.Sprintf(`<div class="table-row">`+
		`<div class="table-cell">%s <span class="apkm-badge">%s</span></div>`+
		`<div class="table-cell">%s</div>`+
		`<div class="table-cell">%s</div>`+
		`<div class="table-cell">%s</div>`+
		`<div class="table-cell"><a href="%s">dl</a>`+
		`<span class="apkm-signature" title="Signature: cafe01">x</span>`+
		`<span class="dateyear_utc" data-utcdate="2024-05-01">May 1</span></div>`+
		`</div>`, variant, kind, arch, minVersion, dpi, href)
}

func releasePage(rows ...string) string {
	return `<html><body><div class="notes"><ul><li>Fixed crash</li></ul></div>` +
		`<div class="variants-table">` + strings.Join(rows, "") + `</div></body></html>`
}

type catalogSite struct {
	mu        sync.Mutex
	requested []string
}

func (s *catalogSite) seen(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.requested {
		if p == path {
			return true
		}
	}
	return false
}

func newSite(t *testing.T) (*httptest.Server, *catalogSite) {
	t.Helper()
	site := &catalogSite{}
	pages := map[string]string{
		"/apk/example/app": listingPage("app 2.0.0-beta", "app 1.9.0", "app 1.8.0"),
		"/apk/example/app/app-1-9-0-release/": releasePage(
			variantRow("APK", "1.9.0 (1)", "armeabi-v7a", "Android 7.0+", "nodpi", "/variant/arm/"),
			variantRow("APK", "1.9.0 (2)", "arm64-v8a", "Android 8.0+", "nodpi", "/variant/arm64/"),
			variantRow("BUNDLE", "1.9.0 (3)", "universal", "Android 9.0+", "nodpi", "/variant/bundle/"),
		),
		"/apk/example/app/app-1-7-0-release": releasePage(
			variantRow("APK", "1.7.0 (1)", "arm64-v8a", "Android 6.0+", "nodpi", "/variant/old/"),
		),
		"/apk/example/app/app-1-6-0-release": releasePage(),
		"/variant/arm/":                      `<a class="downloadButton" href="/gate/arm/">Download</a>`,
		"/variant/arm64/":                    `<a class="downloadButton" href="/gate/arm64/">Download</a>`,
		"/variant/bundle/":                   `<a class="downloadButton" href="/gate/bundle/">Download</a>`,
		"/variant/old/":                      `<a class="downloadButton" href="/gate/old/">Download</a>`,
		"/gate/arm/":                         `<div class="card-with-tabs"><a href="/file?name=arm">here</a></div>`,
		"/gate/arm64/":                       `<div class="card-with-tabs"><a href="/file?name=arm64">here</a></div>`,
		"/gate/bundle/":                      `<div class="card-with-tabs"><a href="/file?name=bundle">here</a></div>`,
		"/gate/old/":                         `<div class="card-with-tabs"><a href="/file?name=old">here</a></div>`,
	}
	files := map[string]string{
		"arm":    "/files/app_1.9.0_arm.apk",
		"arm64":  "/files/app_1.9.0_arm64.apk",
		"bundle": "/files/app_1.9.0.apkm",
		"old":    "/files/app_1.7.0.apk",
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.requested = append(site.requested, r.URL.Path)
		site.mu.Unlock()

		if r.URL.Path == "/file" {
			http.Redirect(w, r, files[r.URL.Query().Get("name")], http.StatusFound)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/files/") {
			io.WriteString(w, "bytes of "+filepath.Base(r.URL.Path))
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, page)
	}))
	t.Cleanup(ts.Close)
	return ts, site
}

func baseOptions(ts *httptest.Server, dir string) config.Options {
	opts := config.Default()
	opts.Org = "example"
	opts.Repo = "app"
	opts.BaseURL = ts.URL
	opts.OutputDir = dir
	return opts
}

func run(t *testing.T, opts config.Options) (Result, error) {
	t.Helper()
	p, err := New(fetch.New("", 0), opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p.Run(context.Background(), opts)
}

func TestRunAutoDetectsStableVersion(t *testing.T) {
	ts, site := newSite(t)
	dir := t.TempDir()

	res, err := run(t, baseOptions(ts, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Skipped {
		t.Fatalf("unexpected skip")
	}
	if site.seen("/apk/example/app/app-2-0-0-beta-release/") {
		t.Fatalf("prerelease page should not be fetched")
	}

	out := res.Outputs
	if out.Version != "1.9.0" || out.Arch != "armeabi-v7a" || out.DPI != "nodpi" {
		t.Fatalf("unexpected outputs %+v", out)
	}
	if out.Filename != filepath.Join(dir, "app_1.9.0_arm.apk") {
		t.Fatalf("filename = %q", out.Filename)
	}
	if out.MinSDK != 24 || out.Signature != "cafe01" || out.Date != "2024-05-01" {
		t.Fatalf("metadata outputs %+v", out)
	}
	data, err := os.ReadFile(out.Filename)
	if err != nil || string(data) != "bytes of app_1.9.0_arm.apk" {
		t.Fatalf("artifact = %q, %v", data, err)
	}
}

func TestRunWithFiltersTemplateAndNotes(t *testing.T) {
	ts, _ := newSite(t)
	dir := t.TempDir()
	opts := baseOptions(ts, dir)
	opts.Arch = "ARM64-V8A"
	opts.Filename = "${arch}-${version}-sdk${minSdk}.apk"
	opts.NotesFile = filepath.Join(dir, "notes.md")

	res, err := run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outputs.Filename != filepath.Join(dir, "arm64-v8a-1.9.0-sdk26.apk") {
		t.Fatalf("filename = %q", res.Outputs.Filename)
	}
	data, _ := os.ReadFile(res.Outputs.Filename)
	if string(data) != "bytes of app_1.9.0_arm64.apk" {
		t.Fatalf("wrong artifact %q", data)
	}
	notes, err := os.ReadFile(opts.NotesFile)
	if err != nil || !strings.Contains(string(notes), "Fixed crash") || !strings.Contains(string(notes), "# app 1.9.0") {
		t.Fatalf("notes = %q, %v", notes, err)
	}
	if res.NotesPath != opts.NotesFile {
		t.Fatalf("notes path = %q", res.NotesPath)
	}
}

func TestRunBundle(t *testing.T) {
	ts, _ := newSite(t)
	opts := baseOptions(ts, t.TempDir())
	opts.Bundle = true

	res, err := run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outputs.Arch != "universal" || filepath.Base(res.Outputs.Filename) != "app_1.9.0.apkm" {
		t.Fatalf("unexpected bundle outputs %+v", res.Outputs)
	}
	if res.Outputs.MinSDK != 28 {
		t.Fatalf("min sdk = %d", res.Outputs.MinSDK)
	}
}

func TestRunExplicitVersionBypassesListing(t *testing.T) {
	ts, site := newSite(t)
	opts := baseOptions(ts, t.TempDir())
	opts.Version = "1.7.0"
	opts.VersionPattern = `^nothing matches$`

	res, err := run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if site.seen("/apk/example/app") {
		t.Fatalf("listing should not be fetched for an explicit version")
	}
	if res.Outputs.Version != "1.7.0" || filepath.Base(res.Outputs.Filename) != "app_1.7.0.apk" {
		t.Fatalf("unexpected outputs %+v", res.Outputs)
	}
}

func TestRunSkipsExistingFile(t *testing.T) {
	ts, _ := newSite(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "app_1.9.0_arm.apk")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := baseOptions(ts, dir)
	opts.Overwrite = false

	res, err := run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped || res.Outputs != (core.Outputs{}) {
		t.Fatalf("expected skip with no outputs, got %+v", res)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "original" {
		t.Fatalf("file modified: %q", data)
	}
}

func TestRunErrors(t *testing.T) {
	ts, _ := newSite(t)

	tests := []struct {
		name  string
		edit  func(*config.Options)
		check func(error) bool
	}{
		{"no version", func(o *config.Options) { o.VersionPattern = `^app 3\.` }, func(err error) bool {
			var e *core.NoVersionFoundError
			return errors.As(err, &e) && e.Pattern == `^app 3\.`
		}},
		{"no arch", func(o *config.Options) { o.Arch = "mips" }, func(err error) bool {
			var e *core.NoVariantFoundError
			return errors.As(err, &e) && e.Filter == "arch" && strings.Contains(err.Error(), "app version 1.9.0")
		}},
		{"no dpi", func(o *config.Options) { o.Arch = "arm64-v8a"; o.DPI = "120dpi" }, func(err error) bool {
			var e *core.NoVariantFoundError
			return errors.As(err, &e) && e.Filter == "dpi"
		}},
		{"empty release", func(o *config.Options) { o.Version = "1.6.0" }, func(err error) bool {
			var e *core.NoVariantFoundError
			return errors.As(err, &e) && e.Filter == ""
		}},
		{"missing release page", func(o *config.Options) { o.Version = "0.1.0" }, func(err error) bool {
			var e *core.CatalogFormatError
			return errors.As(err, &e)
		}},
		{"bad extension", func(o *config.Options) { o.Filename = "${arch}.zip" }, func(err error) bool {
			var e *core.DownloadError
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		opts := baseOptions(ts, t.TempDir())
		tt.edit(&opts)
		_, err := run(t, opts)
		if err == nil || !tt.check(err) {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}
