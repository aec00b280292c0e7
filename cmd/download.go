package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/apkpipe/core/pipeline"
	"github.com/gaurav-prasanna/apkpipe/core/render"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Resolve a release and download its APK or bundle",
	Long: `Download picks a version (the newest stable one unless --version,
--version-pattern or --include-prerelease say otherwise), picks the first
variant matching --arch and --dpi, follows the catalog's download pages and
writes the file.

Filename templates may use ${version}, ${variant}, ${arch}, ${dpi},
${minSdk}, ${signature} and ${date}. Without --filename the name is taken
from the download URL.

Examples:
  apkpipe download --org google-inc --repo youtube
  apkpipe download --org google-inc --repo youtube --bundle --filename 'youtube-${version}.apkm'
  apkpipe download --org google-inc --repo youtube --version-pattern '^YouTube 19\.' --arch arm64-v8a --dpi nodpi`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	f := downloadCmd.Flags()
	f.String("version", "", "Exact version to download (skips version detection)")
	f.String("version-pattern", "", "Regular expression the listed version must match")
	f.Bool("include-prerelease", false, "Allow alpha/beta versions")
	f.Bool("bundle", false, "Download the BUNDLE (.apkm) variant instead of the APK")
	f.String("arch", "", "Architecture to match, case-insensitive (e.g. arm64-v8a)")
	f.String("dpi", "", "Screen density to match, case-insensitive (e.g. nodpi)")
	f.String("filename", "", "Output filename or ${field} template")
	f.Bool("overwrite", true, "Overwrite an existing file")
	f.String("output-dir", "", "Output directory (default: current directory)")
	f.String("notes-file", "", "Also write the release notes as Markdown to this path")
}

func runDownload(cmd *cobra.Command, _ []string) error {
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

	p, err := pipeline.New(fetcher, opts, logger)
	if err != nil {
		return fmt.Errorf("initializing pipeline: %w", err)
	}

	res, err := p.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if res.Skipped {
		return nil
	}

	if path := os.Getenv(render.OutputFileEnv); path != "" {
		if err := render.AppendActionsFile(path, res.Outputs); err != nil {
			return err
		}
	}

	if jsonOutput(cmd) {
		return render.JSON(cmd.OutOrStdout(), res.Outputs)
	}
	return render.Summary(cmd.OutOrStdout(), opts.Repo, res.Outputs)
}
