// Package git drives the git binary against a blog work tree.
//
// Every command is addressed with `git -C <path>` so that callers never
// change the process working directory. Failures surface as *GitError
// values wrapping the sentinels of the status package.
package git
