package pick

import (
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/logging"
)

// VariantCriteria controls variant selection. Empty fields do not filter.
type VariantCriteria struct {
	Arch string
	DPI  string
}

// Variant narrows records by arch, then by dpi, and returns the first
// survivor. The arch-before-dpi order is fixed.
func Variant(records []core.VariantRecord, c VariantCriteria, logger *slog.Logger) (core.VariantRecord, error) {
	log := logging.OrDiscard(logger)

	filtered, err := FilterVariants(records, c, log)
	if err != nil {
		return core.VariantRecord{}, err
	}
	if len(filtered) == 0 {
		return core.VariantRecord{}, &core.NoVariantFoundError{}
	}

	chosen := filtered[0]
	log.Debug("selected variant", "variant", chosen.Variant, "arch", chosen.Arch, "dpi", chosen.DPI)
	return chosen, nil
}

// FilterVariants applies the arch and dpi filters in that order. It fails
// with NoVariantFoundError naming the filter that left nothing.
func FilterVariants(records []core.VariantRecord, c VariantCriteria, logger *slog.Logger) ([]core.VariantRecord, error) {
	log := logging.OrDiscard(logger)

	filtered := records
	if c.Arch != "" {
		filtered = keepVariants(filtered, func(r core.VariantRecord) bool { return strings.EqualFold(r.Arch, c.Arch) })
		log.Debug("filtered by arch", "arch", c.Arch, "count", len(filtered))
		if len(filtered) == 0 {
			return nil, &core.NoVariantFoundError{Filter: "arch", Value: c.Arch}
		}
	}
	if c.DPI != "" {
		filtered = keepVariants(filtered, func(r core.VariantRecord) bool { return strings.EqualFold(r.DPI, c.DPI) })
		log.Debug("filtered by dpi", "dpi", c.DPI, "count", len(filtered))
		if len(filtered) == 0 {
			return nil, &core.NoVariantFoundError{Filter: "dpi", Value: c.DPI}
		}
	}
	return filtered, nil
}

func keepVariants(in []core.VariantRecord, keep func(core.VariantRecord) bool) []core.VariantRecord {
	out := make([]core.VariantRecord, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
