package cmd

import (
	"text/template"

	"github.com/spf13/cobra"
)

// postCmd represents the post related commands
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Commands to manage posts",
	Long: `Commands to manage the Markdown posts under the content tree.

Posts carry a YAML front matter block consumed by the site generator. blogpub
scaffolds that block, lists what is there and checks it before anything gets
published.`,
}

var postDescriptorTemplate func(opts flagsT) *template.Template

func init() {
	addTemplateFlag(postCmd)
	rootCmd.AddCommand(postCmd)

	postDescriptorTemplate = func(opts flagsT) *template.Template {
		if opts.root.format != "" {
			t, err := template.New("post line").Parse(opts.root.format)
			if err != nil {
				wrapFatalln("invalid template", err)
			}
			return t
		}
		const listLineTemplateString = `{{.Slug}} , {{.FrontMatter.Date.Format "2006-01-02"}} , ` +
			`{{if .FrontMatter.Draft}}draft{{else}}published{{end}} , {{.FrontMatter.Title}}`
		return template.Must(template.New("post line").Parse(listLineTemplateString))
	}
}
