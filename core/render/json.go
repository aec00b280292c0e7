// Package render reports the outputs of a successful run: as JSON, as
// GitHub Actions step outputs, or as a short human summary.
package render

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON writes v (outputs, or a version/variant listing) as indented JSON
// followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
