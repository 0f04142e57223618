package cmd

import (
	"context"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

// buildCmd runs the generator once, without touching git or the backup store.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site without publishing",
	Long: `Build the site without publishing.

The generator runs exactly as it would during a publish, but nothing is
committed, pushed or backed up.`,
	Example: `% blogpub build --generator "hugo --minify"`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "build", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		logger, err := optionInputs.getLogger()
		if err != nil {
			wrapFatalln("failed to set log level", err)
			return
		}
		siteDir, err := optionInputs.siteDir()
		if err != nil {
			wrapFatalln("resolve site directory", err)
			return
		}

		res, err := optionInputs.siteBuilder(siteDir, logger).Run(ctx)
		if err != nil {
			wrapFatalln("build site", err)
			return
		}
		infoLogger.Printf("rendered %d file(s), %s, in %v at %s",
			res.Files,
			units.HumanSize(float64(res.Bytes)),
			res.Duration.Round(time.Millisecond),
			res.OutputDir,
		)
	},
}

func init() {
	addSiteDirFlag(buildCmd)
	addOutputDirFlag(buildCmd)
	addGeneratorFlag(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
