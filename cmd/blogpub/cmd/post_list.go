package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xsymphony/blogpub/pkg/model"
)

func applyPostTemplate(post model.PostDescriptor) error {
	var buf bytes.Buffer
	if err := postDescriptorTemplate(blogpubFlags).Execute(&buf, post); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	infoLogger.Println(buf.String())
	return nil
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long: `List the posts under the content tree, newest first.

Drafts are excluded unless --drafts is set. Posts that cannot be parsed are
skipped with a warning: "blogpub post lint" tells what is wrong with them.`,
	Example: `% blogpub post list --drafts
self-hosting-pains , 2023-06-11 , draft , Self hosting pains`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error

		defer func(t0 time.Time) {
			cliUsage(t0, "post list", err)
		}(time.Now())

		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &blogpubFlags)
		site, err := optionInputs.site(ctx, false)
		if err != nil {
			wrapFatalln("create site", err)
			return
		}
		defer func() { _ = site.Close() }()

		posts, err := site.ListPosts(blogpubFlags.post.drafts)
		if err != nil {
			wrapFatalln("list posts", err)
			return
		}
		for _, post := range posts {
			if err = applyPostTemplate(post); err != nil {
				wrapFatalln("list posts", err)
				return
			}
		}
	},
}

func init() {
	addSiteDirFlag(postListCmd)
	addContentDirFlag(postListCmd)
	addDraftsFlag(postListCmd)
	postCmd.AddCommand(postListCmd)
}
