// Package builder runs the external static-site generator for a blog
// repository and reports what it produced.
//
// The generator is an ordinary binary (hugo by default) executed in the
// site directory. The builder does not interpret the site content: its
// contract is that after a successful run the output directory exists,
// and it returns file and byte counters for that directory.
package builder
