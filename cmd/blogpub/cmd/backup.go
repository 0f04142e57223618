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

// backupCmd ships the content sources to the backup store, outside of a
// publish run.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the content sources",
	Long: `Back up the content sources to the backup target.

Uploads are incremental: files whose fingerprint already made it to the target
are skipped, unless --full is set. Every backup writes an immutable snapshot
manifest listing what the content tree looked like.`,
	Example: `% blogpub backup
% blogpub backup --target gs://my-blog-backups/site
% blogpub backup --full --target /mnt/usb/blog`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "backup", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, true)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		res, err := site.Backup(ctx, core.BackupRequest{
			Full: blogpubFlags.backup.full,
		})
		if err != nil {
			if errors.Is(err, lock.ErrBusy) {
				wrapFatalln("a publish or backup is already running for this site (use --lock-wait to wait for it)", err)
				return
			}
			wrapFatalln("backup", err)
			return
		}
		infoLogger.Printf("backed up %d file(s) to snapshot %s (%s uploaded, %d unchanged) in %v",
			len(res.Entries),
			res.SnapshotID,
			units.HumanSize(float64(res.Bytes)),
			res.Skipped,
			res.Duration.Round(time.Millisecond),
		)
	},
}

func init() {
	addSiteDirFlag(backupCmd)
	addContentDirFlag(backupCmd)
	addIncludeFlag(backupCmd)
	addBackupTargetFlag(backupCmd)
	addFullFlag(backupCmd)
	addLockWaitFlag(backupCmd)
	addConcurrencyFactorFlag(backupCmd)
	rootCmd.AddCommand(backupCmd)
}
