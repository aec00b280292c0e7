package chain

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/fetch"
)

const (
	variantPage = `<html><body>
<a class="btn" href="/elsewhere">Other</a>
<a class="btn downloadButton" href="/apk/org/app/app-1-0-release/app-1-0-android-apk-download/download/?key=abc">Download APK</a>
</body></html>`

	downloadPage = `<html><body>
<div class="card-with-tabs">
  <div class="tab-content">
    <p>Your download will start shortly. <a rel="nofollow" href="/wp-content/themes/APKMirror/download.php?id=42&amp;key=xyz">click here</a></p>
    <a href="/second">second</a>
  </div>
</div>
</body></html>`
)

func newGateway(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, page)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestResolveFollowsBothHops(t *testing.T) {
	ts := newGateway(t, map[string]string{
		"/apk/org/app/app-1-0-release/app-1-0-android-apk-download/":          variantPage,
		"/apk/org/app/app-1-0-release/app-1-0-android-apk-download/download/": downloadPage,
	})

	got, err := New(fetch.New("", 0), ts.URL, nil).Resolve(context.Background(),
		"/apk/org/app/app-1-0-release/app-1-0-android-apk-download/")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := ts.URL + "/wp-content/themes/APKMirror/download.php?id=42&key=xyz"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveMissingLinks(t *testing.T) {
	tests := []struct {
		name  string
		pages map[string]string
		stage string
	}{
		{
			name:  "no download button",
			pages: map[string]string{"/variant/": `<html><body><a href="/x">nope</a></body></html>`},
			stage: StageDownloadPage,
		},
		{
			name: "no tabbed link",
			pages: map[string]string{
				"/variant/":  `<a class="downloadButton" href="/download/">go</a>`,
				"/download/": `<div class="card"><a href="/file">file</a></div>`,
			},
			stage: StageDirectURL,
		},
		{
			name: "empty href",
			pages: map[string]string{
				"/variant/": `<a class="downloadButton" href=" ">go</a>`,
			},
			stage: StageDownloadPage,
		},
	}
	for _, tt := range tests {
		ts := newGateway(t, tt.pages)
		_, err := New(fetch.New("", 0), ts.URL, nil).Resolve(context.Background(), "/variant/")
		var lnf *core.LinkNotFoundError
		if !errors.As(err, &lnf) {
			t.Fatalf("%s: expected LinkNotFoundError, got %v", tt.name, err)
		}
		if lnf.Stage != tt.stage {
			t.Errorf("%s: stage = %q, want %q", tt.name, lnf.Stage, tt.stage)
		}
	}
}

func TestResolveFetchFailurePropagates(t *testing.T) {
	ts := newGateway(t, map[string]string{})
	_, err := New(fetch.New("", 0), ts.URL, nil).Resolve(context.Background(), "/variant/")
	if err == nil {
		t.Fatalf("expected error")
	}
	var lnf *core.LinkNotFoundError
	if errors.As(err, &lnf) {
		t.Fatalf("fetch failure should not be reported as a missing link: %v", err)
	}
}
