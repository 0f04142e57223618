package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var postNewCmd = &cobra.Command{
	Use:   "new [title...]",
	Short: "Scaffold a new draft post",
	Long: `Scaffold a new draft post under the content tree.

The post file is named after a slug derived from the title and starts life as
a draft dated now. A title whose slug already exists is refused.`,
	Example: `% blogpub post new Lessons from a year of self hosting
created post lessons-from-a-year-of-self-hosting`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "post new", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, false)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		desc, err := site.CreatePost(strings.Join(args, " "), time.Now())
		if err != nil {
			wrapFatalln("create post", err)
			return
		}
		infoLogger.Printf("created post %s at %s", desc.Slug,
			filepath.Join(site.ContentPath(), filepath.FromSlash(desc.Path)))
	},
}

func init() {
	addSiteDirFlag(postNewCmd)
	addContentDirFlag(postNewCmd)
	postCmd.AddCommand(postNewCmd)
}
