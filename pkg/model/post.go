package model

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// delimiter of the YAML front-matter block, on a line of its own
const frontMatterFence = "---"

// FrontMatter is the structured metadata block prefixed to a Markdown post.
// It is consumed by the site generator; blogpub parses it for scaffolding,
// listing and linting.
type FrontMatter struct {
	Title      string    `json:"title" yaml:"title"`
	Date       time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Tags       []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Categories []string  `json:"categories,omitempty" yaml:"categories,omitempty"`
	Draft      bool      `json:"draft,omitempty" yaml:"draft,omitempty"`
	_          struct{}
}

// PostDescriptor represents one content file: its slug, location relative
// to the content dir, parsed front matter and body size in bytes.
type PostDescriptor struct {
	Slug        string      `json:"slug" yaml:"slug"`
	Path        string      `json:"path" yaml:"path"`
	FrontMatter FrontMatter `json:"frontMatter" yaml:"frontMatter"`
	BodySize    int64       `json:"bodySize" yaml:"bodySize"`
	_           struct{}
}

// ParseFrontMatter splits a post file into its front matter and body.
//
// The front matter must open with a "---" fence on the first line and
// close with another fence; everything after the closing fence is body.
func ParseFrontMatter(content []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter

	rest, found := bytes.CutPrefix(content, []byte(frontMatterFence+"\n"))
	if !found {
		// tolerate CRLF content files
		rest, found = bytes.CutPrefix(content, []byte(frontMatterFence+"\r\n"))
	}
	if !found {
		return fm, nil, fmt.Errorf("post has no front matter: missing opening %q fence", frontMatterFence)
	}

	block, body, found := cutFrontMatterFence(rest)
	if !found {
		return fm, nil, fmt.Errorf("post front matter is not terminated: missing closing %q fence", frontMatterFence)
	}

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return fm, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, body, nil
}

func cutFrontMatterFence(in []byte) (block, body []byte, found bool) {
	for _, fence := range []string{"\n" + frontMatterFence + "\n", "\r\n" + frontMatterFence + "\r\n"} {
		if before, after, ok := bytes.Cut(in, []byte(fence)); ok {
			return before, after, true
		}
	}
	// closing fence at end of file, without trailing newline
	if block, ok := bytes.CutSuffix(in, []byte("\n"+frontMatterFence)); ok {
		return block, nil, true
	}
	return nil, nil, false
}

// MarshalFrontMatter renders a complete post file: fenced front matter
// followed by the body, verbatim. ParseFrontMatter inverts it.
func MarshalFrontMatter(fm FrontMatter, body []byte) ([]byte, error) {
	block, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("serialize front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontMatterFence + "\n")
	buf.Write(block)
	buf.WriteString(frontMatterFence + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Validate reports the first violation found in a post's front matter.
func (p PostDescriptor) Validate() error {
	if strings.TrimSpace(p.FrontMatter.Title) == "" {
		return fmt.Errorf("empty field: post %q has no title", p.Path)
	}
	if p.FrontMatter.Date.IsZero() {
		return fmt.Errorf("empty field: post %q has no date", p.Path)
	}
	for i, tag := range p.FrontMatter.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("invalid tag: post %q tag #%d is blank", p.Path, i+1)
		}
	}
	return nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify derives a file-system and URL safe slug from a post title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugStripRe.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
