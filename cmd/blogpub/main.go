package main

import (
	"github.com/xsymphony/blogpub/cmd/blogpub/cmd"
)

func main() {
	cmd.Execute()
}
