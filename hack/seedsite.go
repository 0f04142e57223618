//go:build ignore
// +build ignore

// Seeds a throwaway blog for poking at the publish pipeline by hand:
// a content tree with a few posts, a shell script standing in for the
// generator, and an output work tree wired to a local bare remote.
//
//	go run hack/seedsite.go -dir /tmp/demoblog -posts 5
//	blogpub publish --site /tmp/demoblog --generator /tmp/demoblog/generate.sh --target /tmp/demoblog-backup hello world
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/xsymphony/blogpub/internal/rand"
	"github.com/xsymphony/blogpub/pkg/model"
)

var args struct {
	dir   string
	posts int
}

func main() {
	log.SetFlags(0)
	flag.StringVar(&args.dir, "dir", "/tmp/demoblog", "where to create the site")
	flag.IntVar(&args.posts, "posts", 3, "number of posts to seed")
	flag.Parse()

	if err := os.MkdirAll(filepath.Join(args.dir, "content", "post"), 0755); err != nil {
		log.Fatalln(err)
	}

	for i := 1; i <= args.posts; i++ {
		title := fmt.Sprintf("Demo post %d (%s)", i, rand.LetterString(4))
		doc, err := model.MarshalFrontMatter(model.FrontMatter{
			Title: title,
			Date:  time.Now().AddDate(0, 0, i-args.posts),
			Tags:  []string{"demo"},
		}, []byte("\nLorem ipsum, but shorter.\n"))
		if err != nil {
			log.Fatalln(err)
		}
		name := filepath.Join(args.dir, "content", "post", model.Slugify(title)+".md")
		if err := os.WriteFile(name, doc, 0644); err != nil {
			log.Fatalln(err)
		}
		log.Println("seeded", name)
	}

	script := "#!/bin/sh\nmkdir -p public\ncat content/post/*.md > public/index.html\n"
	if err := os.WriteFile(filepath.Join(args.dir, "generate.sh"), []byte(script), 0755); err != nil {
		log.Fatalln(err)
	}

	output := filepath.Join(args.dir, "public")
	remote := args.dir + "-remote.git"
	if err := os.MkdirAll(remote, 0755); err != nil {
		log.Fatalln(err)
	}
	git(remote, "init", "--quiet", "--bare")
	git("", "init", "--quiet", output)
	git(output, "symbolic-ref", "HEAD", "refs/heads/master")
	git(output, "remote", "add", "origin", remote)

	log.Println("site ready at", args.dir, "publishing to", remote)
}

func git(dir string, cmdArgs ...string) {
	if dir != "" {
		cmdArgs = append([]string{"-C", dir}, cmdArgs...)
	}
	out, err := exec.Command("git", cmdArgs...).CombinedOutput()
	if err != nil {
		log.Fatalf("git %v: %v\n%s", cmdArgs, err, out)
	}
}
