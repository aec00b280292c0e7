package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/gaurav-prasanna/apkpipe/core"
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
)

// Summary writes a short human-readable report of a download.
func Summary(w io.Writer, repo string, out core.Outputs) error {
	if _, err := fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("✓ %s downloaded to '%s'", repo, out.Filename))); err != nil {
		return err
	}
	for _, kv := range Pairs(out)[1:] {
		if _, err := fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(kv[0]), kv[1]); err != nil {
			return err
		}
	}
	return nil
}
