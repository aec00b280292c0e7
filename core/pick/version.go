// Package pick chooses one version and one variant from catalog listings.
//
// Selection never reorders: it filters, then takes the first survivor.
// The catalog lists newest first, so the first survivor is the newest match.
// The functions are pure apart from writing their decisions to the logger.
package pick

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
	"github.com/gaurav-prasanna/apkpipe/core/sdk"
)

var versionNumber = regexp.MustCompile(`\b\d+(?:\.\d+)+(?:-\S+)?\b`)

// prereleaseMarkers are matched as literal, case-sensitive substrings.
var prereleaseMarkers = []string{"alpha", "beta"}

// VersionCriteria controls version selection.
type VersionCriteria struct {
	Pattern           string // regular expression over the display text
	IncludePrerelease bool
}

// Version filters entries by prerelease markers and pattern and resolves the
// first survivor.
func Version(entries []core.VersionEntry, c VersionCriteria, logger *slog.Logger) (core.ResolvedVersion, error) {
	log := logging.OrDiscard(logger)

	candidates, err := FilterVersions(entries, c, log)
	if err != nil {
		return core.ResolvedVersion{}, err
	}
	if len(candidates) == 0 {
		return core.ResolvedVersion{}, &core.NoVersionFoundError{Pattern: c.Pattern}
	}

	chosen := candidates[0]
	resolved := ParseVersion(chosen)
	log.Debug("selected version", "text", chosen.Text, "number", resolved.Number, "path", resolved.ReleasePath)
	return resolved, nil
}

// FilterVersions applies the prerelease filter and then the pattern filter,
// preserving order.
func FilterVersions(entries []core.VersionEntry, c VersionCriteria, logger *slog.Logger) ([]core.VersionEntry, error) {
	log := logging.OrDiscard(logger)
	log.Debug("found versions (all)", "count", len(entries))

	filtered := entries
	if !c.IncludePrerelease {
		filtered = keepVersions(filtered, func(e core.VersionEntry) bool { return !isPrerelease(e.Text) })
		log.Debug("stable versions (no alpha/beta)", "count", len(filtered))
	}

	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid version pattern %q: %w", c.Pattern, err)
		}
		filtered = keepVersions(filtered, func(e core.VersionEntry) bool { return re.MatchString(e.Text) })
		log.Debug("filtered by pattern", "pattern", c.Pattern, "count", len(filtered))
	}
	return filtered, nil
}

// ParseVersion extracts the version number and platform text from an entry.
// Number is empty when the display text holds no dotted version.
func ParseVersion(e core.VersionEntry) core.ResolvedVersion {
	v := core.ResolvedVersion{
		Number:      versionNumber.FindString(e.Text),
		ReleasePath: e.Path,
	}
	if text, _ := sdk.Platform(e.Text); text != "" {
		v.SDKText = text
		v.APILevel, _ = sdk.APILevel(text)
	}
	return v
}

func isPrerelease(text string) bool {
	for _, marker := range prereleaseMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func keepVersions(in []core.VersionEntry, keep func(core.VersionEntry) bool) []core.VersionEntry {
	out := make([]core.VersionEntry, 0, len(in))
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
