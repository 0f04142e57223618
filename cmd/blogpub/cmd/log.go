package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/xsymphony/blogpub/pkg/journal"
	"github.com/xsymphony/blogpub/pkg/model"
)

var (
	runHeader  = color.New(color.FgYellow)
	runFailure = color.New(color.FgRed)
)

// formatRun renders one journal record the way git log renders commits.
func formatRun(r model.RunDescriptor) string {
	var buf bytes.Buffer
	buf.WriteString(runHeader.Sprintf("run %s (%s)", r.ID, r.Kind))
	buf.WriteString("\n")
	if contributor := r.Contributor.String(); contributor != "" {
		fmt.Fprintf(&buf, "Author: %s\n", contributor)
	}
	fmt.Fprintf(&buf, "Date:   %s\n", r.StartedAt.Format(time.UnixDate))
	if r.Message != "" {
		fmt.Fprintf(&buf, "\n    %s\n", r.Message)
	}
	var details []string
	if r.Branch != "" {
		details = append(details, "branch "+r.Branch)
	}
	if r.Commit != "" {
		details = append(details, "commit "+r.Commit)
	}
	if r.FileCount > 0 {
		details = append(details, fmt.Sprintf("%d file(s), %s", r.FileCount, units.HumanSize(float64(r.TotalSize))))
	}
	if r.Duration > 0 {
		details = append(details, "took "+time.Duration(r.Duration).Round(time.Millisecond).String())
	}
	if len(details) > 0 {
		fmt.Fprintf(&buf, "\n    %s\n", strings.Join(details, ", "))
	}
	if r.Failure != "" {
		fmt.Fprintf(&buf, "\n    %s\n", runFailure.Sprintf("failed: %s", r.Failure))
	}
	return buf.String()
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of publish and backup runs",
	Long: `Show the history of publish and backup runs recorded for the site, newest
first.

Every publish and backup appends a record to a local journal, failed runs
included. This is analogous to "git log" for the publishing activity of the
site.`,
	Example: `% blogpub log --kind publish --limit 5
% blogpub log --format '{{.ID}} , {{.Kind}} , {{.Message}}'`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "log", err)
		}(time.Now())

		if kind := blogpubFlags.journal.kind; kind != "" && kind != model.RunKindPublish && kind != model.RunKindBackup {
			wrapFatalWithCodef(int(unix.EINVAL), "unknown run kind %q: use %q or %q",
				kind, model.RunKindPublish, model.RunKindBackup)
			return
		}

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

		jrnl, err := journal.New(filepath.Join(siteDir, ".blogpub", "journal"), journal.Logger(logger))
		if err != nil {
			wrapFatalln("open run journal", err)
			return
		}
		defer func() { _ = jrnl.Close() }()

		runs, err := jrnl.List(blogpubFlags.journal.kind, blogpubFlags.journal.limit)
		if err != nil {
			wrapFatalln("list runs", err)
			return
		}
		if len(runs) == 0 {
			infoLogger.Println("no runs recorded for this site")
			return
		}

		if blogpubFlags.root.format != "" {
			t, terr := template.New("run line").Parse(blogpubFlags.root.format)
			if terr != nil {
				wrapFatalln("invalid template", terr)
				return
			}
			for _, r := range runs {
				var buf bytes.Buffer
				if err = t.Execute(&buf, r); err != nil {
					wrapFatalln("executing template", err)
					return
				}
				infoLogger.Println(buf.String())
			}
			return
		}
		for _, r := range runs {
			infoLogger.Println(formatRun(r))
		}
	},
}

func init() {
	addSiteDirFlag(logCmd)
	addJournalKindFlag(logCmd)
	addJournalLimitFlag(logCmd)
	addTemplateFlag(logCmd)
	rootCmd.AddCommand(logCmd)
}
