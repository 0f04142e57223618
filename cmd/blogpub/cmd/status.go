package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xsymphony/blogpub/pkg/model"
)

func describeRun(r *model.RunDescriptor) string {
	if r == nil {
		return "never"
	}
	d := fmt.Sprintf("%s (run %s)", r.StartedAt.Format(time.UnixDate), r.ID)
	if r.Failure != "" {
		d += " " + runFailure.Sprint("failed")
	}
	return d
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report where the site stands",
	Long: `Report where the site stands: the state of the output repository, the
publishing target and the most recent recorded runs.

Probes that fail, for example because the output tree was never built, leave
their line out rather than failing the report.`,
	Example: `% blogpub status
Site:          /home/ana/blog
Output:        /home/ana/blog/public
Branch:        master (clean)
Remote:        origin (git@example.com:ana/blog-public.git)
Backup target: localfs
Last publish:  Mon Jun 12 09:14:02 UTC 2023 (run 2QQ6bYMylT0ZB1h5VyyeMClW60r)
Last backup:   never`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "status", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, true)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		st, err := site.Status(ctx)
		if err != nil {
			wrapFatalln("site status", err)
			return
		}

		infoLogger.Printf("Site:          %s", st.SiteDir)
		infoLogger.Printf("Output:        %s", st.OutputDir)
		if st.IsRepository {
			state := "clean"
			if st.Dirty {
				state = fmt.Sprintf("%d uncommitted change(s)", len(st.ChangedFiles))
			}
			infoLogger.Printf("Branch:        %s (%s)", st.Branch, state)
			for _, f := range st.ChangedFiles {
				infoLogger.Printf("    %s", f)
			}
			if st.RemoteURL != "" {
				infoLogger.Printf("Remote:        %s (%s)", st.Remote, st.RemoteURL)
			} else {
				infoLogger.Printf("Remote:        %s", st.Remote)
			}
		} else {
			infoLogger.Printf("Branch:        %s (output directory is not a git repository yet)", st.Branch)
		}
		if st.BackupTarget != "" {
			infoLogger.Printf("Backup target: %s", st.BackupTarget)
		}
		infoLogger.Printf("Last publish:  %s", describeRun(st.LastPublish))
		infoLogger.Printf("Last backup:   %s", describeRun(st.LastBackup))
	},
}

func init() {
	addSiteDirFlag(statusCmd)
	addContentDirFlag(statusCmd)
	addOutputDirFlag(statusCmd)
	addRemoteFlag(statusCmd)
	addBranchFlag(statusCmd)
	addBackupTargetFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
