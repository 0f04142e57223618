// Package model describes the base objects manipulated by blogpub.
//
// The package exposes a model for metadata.
//
// The object model for blogpub is composed of:
//
//	Posts:
//	  A post is a Markdown article under the content tree, prefixed with a
//	  YAML front-matter block (title, date, tags, categories, draft).
//	  blogpub reads the front matter only; article bodies belong to the
//	  site generator.
//
//	Runs:
//	  A run is one execution of the publish or backup pipeline. Runs are
//	  recorded in the local journal so that history survives the process.
//
//	Snapshots:
//	  A snapshot is the manifest of one backup run: the set of content
//	  files shipped to the backup store, with their fingerprints.
package model
