package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/apkpipe/core"
	"github.com/gaurav-prasanna/apkpipe/core/catalog"
	"github.com/gaurav-prasanna/apkpipe/core/pick"
	"github.com/gaurav-prasanna/apkpipe/core/render"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the versions the catalog offers, newest first",
	Long: `Versions prints the catalog's version listing after the prerelease and
pattern filters. The first row is the one download would pick.`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the variants of one release",
	Long: `Variants prints the complete APK (or, with --bundle, BUNDLE) rows of a
release page after the arch and dpi filters. The first row is the one
download would pick.`,
	Args: cobra.NoArgs,
	RunE: runVariants,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(variantsCmd)

	vf := versionsCmd.Flags()
	vf.String("version-pattern", "", "Regular expression the listed version must match")
	vf.Bool("include-prerelease", false, "Include alpha/beta versions")

	rf := variantsCmd.Flags()
	rf.String("version", "", "Version number or release path (required)")
	rf.Bool("bundle", false, "List BUNDLE rows instead of APK rows")
	rf.String("arch", "", "Architecture to match, case-insensitive")
	rf.String("dpi", "", "Screen density to match, case-insensitive")
}

func runVersions(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	logger, fetcher, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	entries, err := catalog.New(fetcher, opts.BaseURL, logger).ListVersions(cmd.Context(), opts.Org, opts.Repo)
	if err != nil {
		return err
	}
	filtered, err := pick.FilterVersions(entries, pick.VersionCriteria{
		Pattern:           opts.VersionPattern,
		IncludePrerelease: opts.IncludePrerelease,
	}, logger)
	if err != nil {
		return err
	}

	resolved := make([]core.ResolvedVersion, 0, len(filtered))
	for _, e := range filtered {
		resolved = append(resolved, pick.ParseVersion(e))
	}

	if jsonOutput(cmd) {
		return render.JSON(cmd.OutOrStdout(), resolved)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPI\tTEXT\tPATH")
	for i, v := range resolved {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Number, apiColumn(v.APILevel), filtered[i].Text, v.ReleasePath)
	}
	return tw.Flush()
}

func runVariants(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Version == "" {
		return fmt.Errorf("--version is required")
	}
	logger, fetcher, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	records, err := catalog.New(fetcher, opts.BaseURL, logger).
		ListVariants(cmd.Context(), opts.Org, opts.Repo, opts.Version, opts.Bundle)
	if err != nil {
		return err
	}
	filtered, err := pick.FilterVariants(records, pick.VariantCriteria{Arch: opts.Arch, DPI: opts.DPI}, logger)
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return render.JSON(cmd.OutOrStdout(), filtered)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tARCH\tMIN SDK\tDPI\tDATE\tURL")
	for _, r := range filtered {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Variant, r.Arch, apiColumn(r.MinSDKAPILevel), r.DPI, r.Date, r.URL)
	}
	return tw.Flush()
}

func apiColumn(level int) string {
	if level == 0 {
		return "-"
	}
	return fmt.Sprint(level)
}
