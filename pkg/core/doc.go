// Package core implements the publishing operations behind the blogpub CLI:
// the publish pipeline, site builds, content backups, post scaffolding and
// linting, and the content watcher.
//
// Operations hang off a Site, which aggregates the pieces an operation needs
// (the git repository for the rendered output, the generator, the journal,
// the backup store). Construct one with New and functional options.
package core
