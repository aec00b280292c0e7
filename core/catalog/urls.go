package catalog

import (
	"net/url"
	"strings"
)

// DefaultOrigin is the public catalog.
const DefaultOrigin = "https://www.apkmirror.com"

// JoinOrigin resolves an href found on a catalog page to an absolute URL.
// Origin-relative hrefs are appended to origin; absolute hrefs pass through.
func JoinOrigin(origin, href string) string {
	if parsed, err := url.Parse(href); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return href
	}
	return strings.TrimSuffix(origin, "/") + href
}

// ReleasePath returns the canonical release page path for a version number:
// /apk/<org>/<repo>/<repo>-<version with dots as dashes>-release.
func ReleasePath(org, repo, version string) string {
	return "/apk/" + org + "/" + repo + "/" + repo + "-" + strings.ReplaceAll(version, ".", "-") + "-release"
}

// IsPath reports whether versionOrPath is a catalog path rather than a version.
func IsPath(versionOrPath string) bool {
	return strings.HasPrefix(versionOrPath, "/")
}
