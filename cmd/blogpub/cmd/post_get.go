package cmd

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/xsymphony/blogpub/pkg/core/status"
	"github.com/xsymphony/blogpub/pkg/errors"
)

var postGetCmd = &cobra.Command{
	Use:   "get [slug]",
	Short: "Get post info by slug",
	Long: `Performs a direct lookup of posts by slug.
Prints the corresponding post information if the slug exists,
exits with ENOENT status otherwise.`,
	Example: `% blogpub post get self-hosting-pains
self-hosting-pains , 2023-06-11 , draft , Self hosting pains`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "post get", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, false)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		post, err := site.GetPost(args[0])
		if err != nil {
			if errors.Is(err, status.ErrPostNotFound) {
				wrapFatalWithCodef(int(unix.ENOENT), "didn't find post %q", args[0])
				return
			}
			wrapFatalln("error reading post", err)
			return
		}

		var buf bytes.Buffer
		err = postDescriptorTemplate(blogpubFlags).Execute(&buf, *post)
		if err != nil {
			wrapFatalln("executing template", err)
			return
		}
		infoLogger.Println(buf.String())
	},
}

func init() {
	addSiteDirFlag(postGetCmd)
	addContentDirFlag(postGetCmd)
	postCmd.AddCommand(postGetCmd)
}
