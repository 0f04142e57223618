package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xsymphony/blogpub/pkg/builder"
	"github.com/xsymphony/blogpub/pkg/core"
	"github.com/xsymphony/blogpub/pkg/dlogger"
	"github.com/xsymphony/blogpub/pkg/git"
	"github.com/xsymphony/blogpub/pkg/journal"
	"github.com/xsymphony/blogpub/pkg/storage"
	"github.com/xsymphony/blogpub/pkg/storage/gcs"
	"github.com/xsymphony/blogpub/pkg/storage/localfs"
	"github.com/xsymphony/blogpub/pkg/storage/sthree"
)

type flagsT struct {
	publish struct {
		allowEmpty bool
		skipBackup bool
		fullBackup bool
		force      bool
		lockWait   time.Duration
	}
	backup struct {
		full   bool
		target string
	}
	post struct {
		drafts bool
	}
	journal struct {
		kind  string
		limit int
	}
	watch struct {
		debounce time.Duration
	}
	site struct {
		dir               string
		contentDir        string
		outputDir         string
		generator         string
		remote            string
		branch            string
		include           []string
		concurrencyFactor int
	}
	root struct {
		credFile string
		logLevel string
		cpuProf  bool
		format   string
		metrics  metricsFlags
	}
}

var blogpubFlags = flagsT{}

func addSiteDirFlag(cmd *cobra.Command) string {
	site := "site"
	if cmd != nil {
		cmd.Flags().StringVar(&blogpubFlags.site.dir, site, "", "The site directory (defaults to the current directory)")
	}
	return site
}

func addContentDirFlag(cmd *cobra.Command) string {
	content := "content"
	cmd.Flags().StringVar(&blogpubFlags.site.contentDir, content, "", `The content directory, relative to the site directory (defaults to "content")`)
	return content
}

func addOutputDirFlag(cmd *cobra.Command) string {
	output := "output"
	cmd.Flags().StringVar(&blogpubFlags.site.outputDir, output, "", `The directory the generator writes, relative to the site directory unless absolute (defaults to "public")`)
	return output
}

func addGeneratorFlag(cmd *cobra.Command) string {
	generator := "generator"
	cmd.Flags().StringVar(&blogpubFlags.site.generator, generator, "", `The generator command line, e.g. "hugo --minify" (defaults to "hugo")`)
	return generator
}

func addRemoteFlag(cmd *cobra.Command) string {
	remote := "remote"
	cmd.Flags().StringVar(&blogpubFlags.site.remote, remote, "", `The git remote the rendered output is pushed to (defaults to "origin")`)
	return remote
}

func addBranchFlag(cmd *cobra.Command) string {
	branch := "branch"
	cmd.Flags().StringVar(&blogpubFlags.site.branch, branch, "", `The branch the rendered output is pushed to (defaults to "master")`)
	return branch
}

func addIncludeFlag(cmd *cobra.Command) string {
	include := "include"
	cmd.Flags().StringSliceVar(&blogpubFlags.site.include, include, nil,
		"Extra files or directories to back up, relative to the site directory. May be repeated")
	return include
}

const concurrencyFactorFlag = "concurrency-factor"

func addConcurrencyFactorFlag(cmd *cobra.Command) string {
	concurrencyFactor := concurrencyFactorFlag
	cmd.Flags().IntVar(&blogpubFlags.site.concurrencyFactor, concurrencyFactor, 0,
		"Heuristic on the amount of concurrency used by backup and lint.  "+
			"Turn this value down to use less memory, increase for faster operations.")
	return concurrencyFactor
}

func addAllowEmptyFlag(cmd *cobra.Command) string {
	c := "allow-empty"
	cmd.Flags().BoolVar(&blogpubFlags.publish.allowEmpty, c, false, "Commit and push even when the rendered output is unchanged")
	return c
}

func addSkipBackupFlag(cmd *cobra.Command) string {
	c := "skip-backup"
	cmd.Flags().BoolVar(&blogpubFlags.publish.skipBackup, c, false, "Do not back up the content sources after pushing")
	return c
}

func addFullBackupFlag(cmd *cobra.Command) string {
	c := "full-backup"
	cmd.Flags().BoolVar(&blogpubFlags.publish.fullBackup, c, false, "Upload every content file, ignoring the incremental index")
	return c
}

func addForceFlag(cmd *cobra.Command) string {
	c := "force"
	cmd.Flags().BoolVar(&blogpubFlags.publish.force, c, false, "Publish even when posts fail front matter checks")
	return c
}

func addLockWaitFlag(cmd *cobra.Command) string {
	c := "lock-wait"
	cmd.Flags().DurationVar(&blogpubFlags.publish.lockWait, c, 0,
		"How long to wait for a publish in progress to finish before giving up (defaults to failing fast)")
	return c
}

func addFullFlag(cmd *cobra.Command) string {
	c := "full"
	cmd.Flags().BoolVar(&blogpubFlags.backup.full, c, false, "Upload every content file, ignoring the incremental index")
	return c
}

func addBackupTargetFlag(cmd *cobra.Command) string {
	c := "target"
	cmd.Flags().StringVar(&blogpubFlags.backup.target, c, "",
		"The backup target: gs://bucket[/prefix], s3://bucket[/prefix] or a local path (defaults to $HOME/.blogpub/backup)")
	return c
}

func addDraftsFlag(cmd *cobra.Command) string {
	c := "drafts"
	cmd.Flags().BoolVar(&blogpubFlags.post.drafts, c, false, "Include draft posts in the listing")
	return c
}

func addJournalKindFlag(cmd *cobra.Command) string {
	c := "kind"
	cmd.Flags().StringVar(&blogpubFlags.journal.kind, c, "", "Only show runs of this kind (publish or backup)")
	return c
}

func addJournalLimitFlag(cmd *cobra.Command) string {
	c := "limit"
	cmd.Flags().IntVar(&blogpubFlags.journal.limit, c, 20, "Maximum number of runs to show (0 shows all)")
	return c
}

func addDebounceFlag(cmd *cobra.Command) string {
	c := "debounce"
	cmd.Flags().DurationVar(&blogpubFlags.watch.debounce, c, 500*time.Millisecond,
		"How long to let a burst of content changes settle before rebuilding")
	return c
}

func addTemplateFlag(cmd *cobra.Command) string {
	c := "format"
	cmd.PersistentFlags().StringVar(&blogpubFlags.root.format, c, "", `Pretty-print blogpub objects using a Go template. Use '{{ printf "%#v" . }}' to explore available fields`)
	return c
}

func addCredentialFile(cmd *cobra.Command) string {
	credential := "credential"
	cmd.Flags().StringVar(&blogpubFlags.root.credFile, credential, "", "The path to the credential file")
	return credential
}

func addLogLevel(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&blogpubFlags.root.logLevel, loglevel, "", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug (defaults to info)")
	return loglevel
}

func addCPUProfFlag(cmd *cobra.Command) string {
	c := "cpuprof"
	cmd.Flags().BoolVar(&blogpubFlags.root.cpuProf, c, false, "Toggle runtime profiling")
	return c
}

const metricsFlag = "metrics"

func addMetricsFlag(cmd *cobra.Command) string {
	c := metricsFlag
	defaultMetrics := false
	blogpubFlags.root.metrics.Enabled = &defaultMetrics
	cmd.PersistentFlags().BoolVar(blogpubFlags.root.metrics.Enabled, c, defaultMetrics, `Toggle telemetry and metrics collection`)
	return c
}

func addMetricsURLFlag(cmd *cobra.Command) string {
	c := "metrics-url"
	cmd.PersistentFlags().StringVar(&blogpubFlags.root.metrics.URL, c, "", `Fully qualified URL to an influxdb metrics collector, with optional user and password`)
	return c
}

func addMetricsUserFlag(cmd *cobra.Command) string {
	c := "metrics-user"
	cmd.PersistentFlags().StringVar(&blogpubFlags.root.metrics.User, c, "", `User to connect to the metrics collector backend. Overrides any user set in URL`)
	return c
}

func addMetricsPasswordFlag(cmd *cobra.Command) string {
	c := "metrics-password"
	cmd.PersistentFlags().StringVar(&blogpubFlags.root.metrics.Password, c, "", `Password to connect to the metrics collector backend. Overrides any password set in URL`)
	return c
}

/** combined config (file + env var) and parameters (pflags) */

type cliOptionInputs struct {
	config *CLIConfig
	params *flagsT
}

func newCliOptionInputs(config *CLIConfig, params *flagsT) *cliOptionInputs {
	return &cliOptionInputs{
		config: config,
		params: params,
	}
}

/** combined config and parameters to internal objects */

func (in *cliOptionInputs) getLogger() (*zap.Logger, error) {
	var err error
	in.config.onceLogger.Do(func() {
		level := in.params.root.logLevel
		if level == "" {
			level = dlogger.LogLevelInfo
		}
		in.config.logger, err = dlogger.GetLogger(level)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set log level: %v", err)
	}
	return in.config.logger, nil
}

// siteDir resolves the site directory from flags and config, defaulting
// to the current directory.
func (in *cliOptionInputs) siteDir() (string, error) {
	dir := in.params.site.dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve site directory %s: %w", dir, err)
	}
	return abs, nil
}

func (in *cliOptionInputs) siteBuilder(siteDir string, logger *zap.Logger) *builder.Builder {
	opts := []builder.Option{builder.Logger(logger)}
	if in.params.site.outputDir != "" {
		opts = append(opts, builder.OutputDir(in.params.site.outputDir))
	}
	if generator := in.params.site.generator; generator != "" {
		words := strings.Fields(generator)
		if len(words) > 0 {
			opts = append(opts, builder.Command(words[0], words[1:]...))
		}
	}
	return builder.New(siteDir, opts...)
}

// backupStore builds the store backing up content sources. The target
// scheme selects the backend: gs:// for GCS, s3:// for S3, anything else
// is a local path.
func (in *cliOptionInputs) backupStore(ctx context.Context, logger *zap.Logger) (storage.Store, error) {
	target := in.params.backup.target
	var credentials string
	switch {
	case in.params.root.credFile != "":
		credentials = in.params.root.credFile
	case in.config.Credential != "":
		credentials = in.config.Credential
	}
	switch {
	case strings.HasPrefix(target, "gs://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(target, "gs://"))
		return gcs.New(ctx, bucket, credentials,
			gcs.Logger(logger),
			gcs.Prefix(prefix),
		)
	case strings.HasPrefix(target, "s3://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(target, "s3://"))
		return sthree.New(
			sthree.Bucket(bucket),
			sthree.Prefix(prefix),
			sthree.Logger(logger),
		), nil
	case target == "":
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not get home directory for user: %w", err)
		}
		return localBackupStore(filepath.Join(home, ".blogpub", "backup"))
	default:
		dir, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve backup target %s: %w", target, err)
		}
		return localBackupStore(dir)
	}
}

func localBackupStore(dir string) (storage.Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create backup directory %s: %w", dir, err)
	}
	return localfs.New(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// splitBucket separates "bucket/some/prefix" into its bucket and prefix parts.
func splitBucket(in string) (string, string) {
	parts := strings.SplitN(in, "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// site assembles the Site all commands operate on. The backup store is
// only dialed when withStore is set, so commands that never upload do
// not require backup credentials.
func (in *cliOptionInputs) site(ctx context.Context, withStore bool) (*core.Site, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, fmt.Errorf("get logger: %v", err)
	}
	siteDir, err := in.siteDir()
	if err != nil {
		return nil, err
	}

	bld := in.siteBuilder(siteDir, logger)
	opts := []core.Option{
		core.Builder(bld),
		core.Repo(git.New(bld.OutputPath(), git.Logger(logger))),
		core.Logger(logger),
		core.WithMetrics(in.params.root.metrics.IsEnabled()),
	}
	if in.params.site.contentDir != "" {
		opts = append(opts, core.ContentDir(in.params.site.contentDir))
	}
	if in.params.site.remote != "" {
		opts = append(opts, core.Remote(in.params.site.remote))
	}
	if in.params.site.branch != "" {
		opts = append(opts, core.Branch(in.params.site.branch))
	}
	if len(in.params.site.include) > 0 {
		opts = append(opts, core.Include(in.params.site.include...))
	}
	if in.params.site.concurrencyFactor > 0 {
		opts = append(opts, core.Concurrency(in.params.site.concurrencyFactor))
	}
	if in.params.publish.lockWait > 0 {
		opts = append(opts, core.LockWait(in.params.publish.lockWait))
	}

	journalDir := filepath.Join(siteDir, ".blogpub", "journal")
	jrnl, err := journal.New(journalDir, journal.Logger(logger))
	if err != nil {
		// the journal is advisory: the site remains usable without one
		logger.Warn("could not open run journal", zap.String("dir", journalDir), zap.Error(err))
	} else {
		opts = append(opts, core.Journal(jrnl))
	}

	if withStore {
		store, err := in.backupStore(ctx, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.BackupStore(store))
	}
	return core.New(siteDir, opts...), nil
}

/** misc util */

// requireFlags sets a flag (local to the command or inherited) as required
func requireFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		err := cmd.MarkFlagRequired(flag)
		if err != nil {
			err = cmd.MarkPersistentFlagRequired(flag)
		}
		if err != nil {
			wrapFatalln(fmt.Sprintf("error attempting to mark the required flag %q", flag), err)
			return
		}
	}
}
