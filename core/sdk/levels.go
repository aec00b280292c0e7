// Package sdk maps free-text Android platform versions ("Android 8.0+")
// to numeric API levels.
package sdk

import (
	"regexp"
	"strings"
)

var platformPattern = regexp.MustCompile(`Android (\d+(?:\.\d+)*L?)\+?`)

// apiLevels maps platform releases to API levels. Keys are compared exactly,
// so "8.1.0" misses and falls back to "8.1".
var apiLevels = map[string]int{
	"1.0":   1,
	"1.1":   2,
	"1.5":   3,
	"1.6":   4,
	"2.0":   5,
	"2.0.1": 6,
	"2.1":   7,
	"2.2":   8,
	"2.3":   9,
	"2.3.1": 9,
	"2.3.2": 9,
	"2.3.3": 10,
	"2.3.4": 10,
	"3.0":   11,
	"3.1":   12,
	"3.2":   13,
	"4.0":   14,
	"4.0.1": 14,
	"4.0.2": 14,
	"4.0.3": 15,
	"4.0.4": 15,
	"4.1":   16,
	"4.2":   17,
	"4.3":   18,
	"4.4":   19,
	"5.0":   21,
	"5.1":   22,
	"6.0":   23,
	"7.0":   24,
	"7.1":   25,
	"8.0":   26,
	"8.1":   27,
	"9":     28,
	"10":    29,
	"11":    30,
	"12":    31,
	"12L":   32,
	"13":    33,
	"14":    34,
	"15":    35,
	"16":    36,
}

// Platform returns the full "Android N" substring and the bare version token
// found in text. Both are empty if text names no platform.
func Platform(text string) (match, version string) {
	m := platformPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return m[0], m[1]
}

// APILevel returns the API level for the platform version named in text.
// The lookup tries the exact token, then major.minor, then major.
func APILevel(text string) (int, bool) {
	_, version := Platform(text)
	if version == "" {
		return 0, false
	}
	return lookup(version)
}

func lookup(version string) (int, bool) {
	if level, ok := apiLevels[version]; ok {
		return level, true
	}
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		if level, ok := apiLevels[parts[0]+"."+parts[1]]; ok {
			return level, true
		}
	}
	if len(parts) > 1 {
		if level, ok := apiLevels[parts[0]]; ok {
			return level, true
		}
	}
	return 0, false
}
