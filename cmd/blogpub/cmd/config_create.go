package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configGen = &cobra.Command{
	Aliases: []string{"set"},
	Use:     "create",
	Short:   "Create a local config file",
	Long: `Creates a local config file for blogpub to hold flags that do not change between runs, like the site directory, the generator command or the backup target.

	By default, this configuration file will be placed in ` + configFileLocation(false) + `.

	Use the ` + envConfigLocation + ` environment variable to change this default target.
	`,
	Example: `# Record the site location and generator once and for all
% blogpub config create --site ~/blog --generator "hugo --minify"
config file created in /home/fred/.blogpub/blogpub.yaml

# Set a backup bucket and the credentials to reach it (use absolute paths here)
% blogpub config create --target gs://my-blog-backup --credential /home/fred/.config/gcloud/application_default_credentials.json
config file created in /home/fred/.blogpub/blogpub.yaml

# Generate config in some non-default location
% ` + envConfigLocation + `=~/.config/blogpub/config.yaml blogpub config create --site ~/blog
config file created in /home/fred/.config/blogpub/config.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		_, err := optionInputs.getLogger()
		if err != nil {
			wrapFatalln("failed to set log level", err)
			return
		}

		localConfig := CLIConfig{
			Credential: blogpubFlags.root.credFile,
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

		file := configFileLocation(true)

		if ext := filepath.Ext(file); ext != ".yaml" {
			infoLogger.Printf("warning: the generated config file will contain a yaml document, but the file extension is %q", ext)
		}
		o, err := localConfig.MarshalConfig()
		if err != nil {
			wrapFatalln("could not serialize config to yaml", err)
			return
		}

		err = os.Mkdir(filepath.Dir(file), 0777)
		if err != nil && !os.IsExist(err) {
			wrapFatalln("could not create directory to hold config "+filepath.Dir(file), err)
			return
		}

		err = os.WriteFile(file, o, 0600)
		if err != nil {
			wrapFatalln("error writing config file "+file, err)
			return
		}

		log.Printf("config file created in %s", file)
	},
}

func init() {
	addCredentialFile(configGen)
	addSiteDirFlag(configGen)
	addContentDirFlag(configGen)
	addOutputDirFlag(configGen)
	addGeneratorFlag(configGen)
	addRemoteFlag(configGen)
	addBranchFlag(configGen)
	addIncludeFlag(configGen)
	addBackupTargetFlag(configGen)
	configCmd.AddCommand(configGen)
}
