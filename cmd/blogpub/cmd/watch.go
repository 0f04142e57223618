package cmd

import (
	"context"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/xsymphony/blogpub/pkg/builder"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the site whenever content changes",
	Long: `Watch the content tree and rebuild the site whenever it changes.

Bursts of changes are debounced: the rebuild runs once the tree has been quiet
for the debounce window. Nothing is committed, pushed or backed up; this is a
preview loop. Stop it with Ctrl-C.`,
	Example: `% blogpub watch --debounce 2s`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "watch", err)
		}(time.Now())

		ctx, cancel := signalContext(context.Background())
		defer cancel()

		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, false)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		infoLogger.Printf("watching %s, press Ctrl-C to stop", site.ContentPath())
		err = site.Watch(ctx, blogpubFlags.watch.debounce, func(res *builder.Result, berr error) {
			if berr != nil {
				infoLogger.Printf("rebuild failed: %v", berr)
				return
			}
			infoLogger.Printf("rebuilt %d file(s), %s, in %v",
				res.Files,
				units.HumanSize(float64(res.Bytes)),
				res.Duration.Round(time.Millisecond),
			)
		})
		if err != nil {
			wrapFatalln("watch content", err)
			return
		}
	},
}

func init() {
	addSiteDirFlag(watchCmd)
	addContentDirFlag(watchCmd)
	addOutputDirFlag(watchCmd)
	addGeneratorFlag(watchCmd)
	addDebounceFlag(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
