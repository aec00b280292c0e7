package catalog

import (
	"regexp"

	"github.com/gaurav-prasanna/apkpipe/core/extract"
)

// Structural queries against the catalog's markup. They are the only place
// that knows the site's class names.
var (
	versionLinks = extract.MustCompile(
		`#primary > div.listWidget.p-relative > div > div.appRow > div > div:nth-child(2) > div > h5 > a`)

	variantRows = extract.MustCompile(`.variants-table .table-row`)
	kindBadge   = extract.MustCompile(`span.apkm-badge`)
	tableCells  = extract.MustCompile(`.table-cell`)
	anyLink     = extract.MustCompile(`a[href]`)
	signature   = extract.MustCompile(`.apkm-signature`)
	releaseDate = extract.MustCompile(`.dateyear_utc`)

	releaseNotes = extract.MustCompile(`div.notes`)
)

const (
	kindAPK    = "APK"
	kindBundle = "BUNDLE"

	signatureAttr = "title"
	dateAttr      = "data-utcdate"
)

var signaturePattern = regexp.MustCompile(`Signature: ([0-9a-fA-F]+)`)
