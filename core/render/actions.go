package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
)

// OutputFileEnv names the file GitHub Actions reads step outputs from.
const OutputFileEnv = "GITHUB_OUTPUT"

// Pairs returns the outputs as ordered key/value pairs. Optional outputs
// that are unknown are omitted.
func Pairs(out core.Outputs) [][2]string {
	pairs := [][2]string{
		{"filename", out.Filename},
		{"version", out.Version},
		{"variant", out.Variant},
		{"arch", out.Arch},
		{"dpi", out.DPI},
	}
	if out.MinSDK > 0 {
		pairs = append(pairs, [2]string{"minSdk", strconv.Itoa(out.MinSDK)})
	}
	if out.Date != "" {
		pairs = append(pairs, [2]string{"date", out.Date})
	}
	if out.Signature != "" {
		pairs = append(pairs, [2]string{"signature", out.Signature})
	}
	return pairs
}

// Actions writes outputs as name=value lines. Values containing a newline
// use the heredoc form name<<DELIM ... DELIM.
func Actions(w io.Writer, out core.Outputs) error {
	for _, kv := range Pairs(out) {
		var err error
		if strings.ContainsAny(kv[1], "\r\n") {
			delim := "APKPIPE_EOF"
			_, err = fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", kv[0], delim, kv[1], delim)
		} else {
			_, err = fmt.Fprintf(w, "%s=%s\n", kv[0], kv[1])
		}
		if err != nil {
			return fmt.Errorf("writing output %s: %w", kv[0], err)
		}
	}
	return nil
}

// AppendActionsFile appends outputs to the file at path.
func AppendActionsFile(path string, out core.Outputs) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if err := Actions(f, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
