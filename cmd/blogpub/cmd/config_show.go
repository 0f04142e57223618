package cmd

import (
	"github.com/spf13/cobra"
)

var configShow = &cobra.Command{
	Aliases: []string{"get", "view"},
	Use:     "show",
	Short:   "Show the active config",
	Long: `Prints the configuration blogpub resolved from command line flags, environment
and the config file, as a yaml document which may be saved as a config file.
`,
	Run: func(cmd *cobra.Command, args []string) {
		effective := CLIConfig{
			Credential: config.Credential,
			Site:       blogpubFlags.site.dir,
			Content:    blogpubFlags.site.contentDir,
			Output:     blogpubFlags.site.outputDir,
			Generator:  blogpubFlags.site.generator,
			Remote:     blogpubFlags.site.remote,
			Branch:     blogpubFlags.site.branch,
			Backup:     blogpubFlags.backup.target,
			Include:    blogpubFlags.site.include,
			Loglevel:   blogpubFlags.root.logLevel,
			Metrics:    blogpubFlags.root.metrics,
		}

		o, err := effective.MarshalConfig()
		if err != nil {
			wrapFatalln("could not serialize config to yaml", err)
			return
		}

		logStdOut("%s", o)
	},
}

func init() {
	addSiteDirFlag(configShow)
	addContentDirFlag(configShow)
	addOutputDirFlag(configShow)
	addGeneratorFlag(configShow)
	addRemoteFlag(configShow)
	addBranchFlag(configShow)
	addIncludeFlag(configShow)
	addBackupTargetFlag(configShow)
	configCmd.AddCommand(configShow)
}
