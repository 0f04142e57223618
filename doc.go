/*
Package blogpub provides CLI tooling to build and publish a static blog.

The primary goal of blogpub is to drive the whole publishing pipeline of a
generator-based blog in one command: check the content, rebuild the site,
commit and push the rendered output, then back up the sources, with every
run recorded in a local journal.
*/
package blogpub
