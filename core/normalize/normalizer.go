// Package normalize converts a release's "What's new" markup into Markdown
// so it can be attached to the downloaded artifact.
package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ReleaseNotes converts a notes fragment into a Markdown document headed by
// the app and version.
func ReleaseNotes(title, version, fragment string) (string, error) {
	body, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	var b strings.Builder
	heading := strings.TrimSpace(title + " " + version)
	if heading != "" {
		fmt.Fprintf(&b, "# %s\n\n", heading)
	}
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}

// WriteNotes writes notes to path, creating parent directories.
func WriteNotes(path, notes string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(notes), 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}
