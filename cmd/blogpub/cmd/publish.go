package cmd

import (
	"context"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/xsymphony/blogpub/pkg/core"
	"github.com/xsymphony/blogpub/pkg/errors"
	"github.com/xsymphony/blogpub/pkg/lock"
)

// publishCmd runs the whole pipeline against the site.
var publishCmd = &cobra.Command{
	Use:   "publish [message...]",
	Short: "Build the site and push the result to the publishing remote",
	Long: `Build the site and push the result to the publishing remote.

The pipeline checks post front matter, runs the generator, commits the rendered
output tree and pushes it, then backs up the content sources. It stops at the
first stage that fails and reports which stage that was.

Any arguments become the commit message, joined by single spaces. Without
arguments the message is "rebuilding site " followed by the current date.

Only one publish may run at a time for a given site: a second invocation fails
fast unless --lock-wait is set.`,
	Example: `% blogpub publish fix typo in yesterday's post
% blogpub publish --allow-empty
% blogpub publish --force --skip-backup`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "publish", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, !blogpubFlags.publish.skipBackup)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		res, err := site.Publish(ctx, core.PublishRequest{
			MessageArgs: args,
			AllowEmpty:  blogpubFlags.publish.allowEmpty,
			SkipBackup:  blogpubFlags.publish.skipBackup,
			FullBackup:  blogpubFlags.publish.fullBackup,
			Force:       blogpubFlags.publish.force,
		})
		if err != nil {
			if errors.Is(err, lock.ErrBusy) {
				wrapFatalln("another publish is already running for this site (use --lock-wait to wait for it)", err)
				return
			}
			wrapFatalln("publish", err)
			return
		}

		if res.Build != nil {
			infoLogger.Printf("rendered %d file(s), %s, in %v",
				res.Build.Files,
				units.HumanSize(float64(res.Build.Bytes)),
				res.Build.Duration.Round(time.Millisecond),
			)
		}
		if !res.Committed {
			infoLogger.Println("output tree unchanged, nothing to publish")
			return
		}
		infoLogger.Printf("published run:%s commit:%s branch:%s message:%q",
			res.RunID, res.Commit, res.Branch, res.Message)
		if res.Backup != nil {
			infoLogger.Printf("backed up %d file(s) to snapshot %s (%s uploaded, %d unchanged)",
				len(res.Backup.Entries),
				res.Backup.SnapshotID,
				units.HumanSize(float64(res.Backup.Bytes)),
				res.Backup.Skipped,
			)
		}
	},
}

func init() {
	addSiteDirFlag(publishCmd)
	addContentDirFlag(publishCmd)
	addOutputDirFlag(publishCmd)
	addGeneratorFlag(publishCmd)
	addRemoteFlag(publishCmd)
	addBranchFlag(publishCmd)
	addIncludeFlag(publishCmd)
	addBackupTargetFlag(publishCmd)
	addAllowEmptyFlag(publishCmd)
	addSkipBackupFlag(publishCmd)
	addFullBackupFlag(publishCmd)
	addForceFlag(publishCmd)
	addLockWaitFlag(publishCmd)
	addConcurrencyFactorFlag(publishCmd)
	rootCmd.AddCommand(publishCmd)
}
