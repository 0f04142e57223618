package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePost = `---
title: Distributed locks with databases
date: 2019-03-12T10:30:00Z
tags:
- mysql
- locking
categories:
- engineering
draft: false
---

Body of the article starts here.
`

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte(samplePost))
	require.NoError(t, err)

	assert.Equal(t, "Distributed locks with databases", fm.Title)
	assert.Equal(t, time.Date(2019, 3, 12, 10, 30, 0, 0, time.UTC), fm.Date.UTC())
	assert.Equal(t, []string{"mysql", "locking"}, fm.Tags)
	assert.Equal(t, []string{"engineering"}, fm.Categories)
	assert.False(t, fm.Draft)
	assert.Contains(t, string(body), "Body of the article")
}

func TestParseFrontMatterErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "no front matter", content: "# Just markdown\n"},
		{name: "unterminated block", content: "---\ntitle: oops\n"},
		{name: "bad yaml", content: "---\ntitle: [unclosed\n---\n"},
	}
	for _, c := range cases {
		_, _, err := ParseFrontMatter([]byte(c.content))
		require.Error(t, err, "case: %s", c.name)
	}
}

func TestParseFrontMatterAtEOF(t *testing.T) {
	// a scaffolded post has no body yet
	fm, body, err := ParseFrontMatter([]byte("---\ntitle: stub\n---"))
	require.NoError(t, err)
	assert.Equal(t, "stub", fm.Title)
	assert.Empty(t, body)
}

func TestMarshalFrontMatterRoundTrip(t *testing.T) {
	in := FrontMatter{
		Title: "Hello",
		Date:  time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Tags:  []string{"go"},
		Draft: true,
	}
	content, err := MarshalFrontMatter(in, []byte("body\n"))
	require.NoError(t, err)

	out, body, err := ParseFrontMatter(content)
	require.NoError(t, err)
	assert.Equal(t, in.Title, out.Title)
	assert.True(t, in.Date.Equal(out.Date))
	assert.Equal(t, in.Tags, out.Tags)
	assert.True(t, out.Draft)
	assert.Equal(t, "body\n", string(body))
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{"Fix Typo", "fix-typo"},
		{"  Distributed Locks: MySQL Edition!  ", "distributed-locks-mysql-edition"},
		{"already-a-slug", "already-a-slug"},
		{"Ünïcödé gets stripped", "ncd-gets-stripped"},
		{"--- ---", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, Slugify(c.title), "title: %q", c.title)
	}
}

func TestPostValidate(t *testing.T) {
	valid := PostDescriptor{
		Slug: "a-post",
		Path: "post/a-post.md",
		FrontMatter: FrontMatter{
			Title: "A post",
			Date:  time.Now(),
			Tags:  []string{"go"},
		},
	}
	require.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.FrontMatter.Title = "   "
	require.Error(t, missingTitle.Validate())

	missingDate := valid
	missingDate.FrontMatter.Date = time.Time{}
	require.Error(t, missingDate.Validate())

	blankTag := valid
	blankTag.FrontMatter.Tags = []string{"ok", " "}
	require.Error(t, blankTag.Validate())
}
