package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/xsymphony/blogpub/pkg/core/status"
)

var postLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check post front matter",
	Long: `Check the front matter of every post under the content tree.

Posts must parse, carry a title and a date, and have no blank tags. The same
checks gate a publish: a clean lint means the publish pipeline will not stop
at its lint stage.

Exits non-zero when any post fails a check.`,
	Example: `% blogpub post lint
post/self-hosting-pains.md: empty field: post "post/self-hosting-pains.md" has no date`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "post lint", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, false)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		report, err := site.Lint(ctx)
		if err != nil {
			wrapFatalln("lint posts", err)
			return
		}
		for _, violation := range report.Violations {
			infoLogger.Printf("%s: %v", violation.Path, violation.Err)
		}
		if n := len(report.Violations); n > 0 {
			err = status.ErrLintViolations
			wrapFatalWithCodef(1, "%d of %d post(s) failed front matter checks", n, report.Checked)
			return
		}
		infoLogger.Printf("all %d post(s) passed front matter checks", report.Checked)
	},
}

func init() {
	addSiteDirFlag(postLintCmd)
	addContentDirFlag(postLintCmd)
	addConcurrencyFactorFlag(postLintCmd)
	postCmd.AddCommand(postLintCmd)
}
