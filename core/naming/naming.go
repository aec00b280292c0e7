// Package naming derives the artifact filename, either from a ${field}
// template or from the last path segment of the download URL.
package naming

import (
	"net/url"
	"path"
	"regexp"
	"strconv"

	"github.com/gaurav-prasanna/apkpipe/core"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)}`)

// Fields returns the template values for a release. ${version} is the resolved
// app version; the record's own version cell is used only when no app version
// is known. Optional fields that are unknown map to the empty string.
func Fields(rel core.ResolvedRelease) map[string]string {
	version := rel.Version
	if version == "" {
		version = rel.Record.Version
	}
	minSDK := ""
	if rel.APILevel > 0 {
		minSDK = strconv.Itoa(rel.APILevel)
	}
	return map[string]string{
		"version":   version,
		"variant":   rel.Record.Variant,
		"arch":      rel.Record.Arch,
		"dpi":       rel.Record.DPI,
		"minSdk":    minSDK,
		"signature": rel.Record.Signature,
		"date":      rel.Record.Date,
	}
}

// Name substitutes the release's fields into template. Placeholders that
// name no known field are left as written. An empty template yields "".
func Name(template string, rel core.ResolvedRelease) string {
	if template == "" {
		return ""
	}
	fields := Fields(rel)
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		key := m[2 : len(m)-1]
		if v, ok := fields[key]; ok {
			return v
		}
		return m
	})
}

// FromURI returns the percent-decoded last path segment of uri. The query
// string is not part of the name. It returns "" when uri has no usable segment.
func FromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	seg := path.Base(u.EscapedPath())
	if seg == "." || seg == "/" {
		return ""
	}
	decoded, err := url.PathUnescape(seg)
	if err != nil {
		return seg
	}
	return decoded
}
