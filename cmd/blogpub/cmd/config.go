package cmd

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// envConfigLocation overrides the location of the config file.
const envConfigLocation = "BLOGPUB_CONFIG"

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Credential string       `json:"credential" yaml:"credential"` // Credentials to use for GCS backup targets
	Site       string       `json:"site" yaml:"site"`             // Site directory
	Content    string       `json:"content" yaml:"content"`       // Content directory, relative to the site
	Output     string       `json:"output" yaml:"output"`         // Rendered output directory, relative to the site
	Generator  string       `json:"generator" yaml:"generator"`   // Generator command line
	Remote     string       `json:"remote" yaml:"remote"`         // Git remote the output repository pushes to
	Branch     string       `json:"branch" yaml:"branch"`         // Branch the output repository pushes to
	Backup     string       `json:"backup" yaml:"backup"`         // Backup target: gs://bucket, s3://bucket or a local path
	Include    []string     `json:"include" yaml:"include"`       // Extra site paths to back up along with the content
	Loglevel   string       `json:"loglevel" yaml:"loglevel"`     // Log level (none, info, debug)
	Metrics    metricsFlags `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	logger     *zap.Logger
	onceLogger sync.Once
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// MarshalConfig serializes the config as a yaml document.
func (c *CLIConfig) MarshalConfig() ([]byte, error) {
	return yaml.Marshal(c)
}

// setBlogpubParams defaults flags left unset on the command line to their configured values.
func (c *CLIConfig) setBlogpubParams(flags *flagsT) {
	if flags.site.dir == "" {
		flags.site.dir = c.Site
	}
	if flags.site.contentDir == "" {
		flags.site.contentDir = c.Content
	}
	if flags.site.outputDir == "" {
		flags.site.outputDir = c.Output
	}
	if flags.site.generator == "" {
		flags.site.generator = c.Generator
	}
	if flags.site.remote == "" {
		flags.site.remote = c.Remote
	}
	if flags.site.branch == "" {
		flags.site.branch = c.Branch
	}
	if len(flags.site.include) == 0 {
		flags.site.include = c.Include
	}
	if flags.backup.target == "" {
		flags.backup.target = c.Backup
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.Loglevel
	}
	if !rootCmd.PersistentFlags().Changed(metricsFlag) && c.Metrics.Enabled != nil {
		flags.root.metrics.Enabled = c.Metrics.Enabled
	}
	if flags.root.metrics.URL == "" {
		flags.root.metrics.URL = c.Metrics.URL
	}
	if flags.root.metrics.User == "" {
		flags.root.metrics.User = c.Metrics.User
	}
	if flags.root.metrics.Password == "" {
		flags.root.metrics.Password = c.Metrics.Password
	}
}

// configFileLocation yields the location of the config file managed by the config commands.
//
// The enforce flag makes a failure to resolve the user's home directory fatal.
func configFileLocation(enforce bool) string {
	location := os.Getenv(envConfigLocation)
	if location == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			if enforce {
				wrapFatalln("could not get home directory for user", err)
			}
			home = "$HOME"
		}
		location = filepath.Join(home, ".blogpub", "blogpub.yaml")
	}
	return location
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage the blogpub CLI config.

Configuration for blogpub is the common set of flags that are needed for most commands and do not change across runs,
analogous to "git config ...". `,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
