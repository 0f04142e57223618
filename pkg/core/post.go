package core

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/xsymphony/blogpub/pkg/core/status"
	"github.com/xsymphony/blogpub/pkg/model"
	"go.uber.org/zap"
)

// postDir is where scaffolded posts land, relative to the content directory
const postDir = "post"

var postExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// CreatePost scaffolds a new draft post under the content tree, named after
// the slug derived from title. The post starts as a draft dated at.
func (s *Site) CreatePost(title string, at time.Time) (*model.PostDescriptor, error) {
	slug := model.Slugify(title)
	if slug == "" {
		return nil, status.ErrInvalidTitle.WrapMessage("%q", title)
	}
	rel := path.Join(postDir, slug+".md")
	target := filepath.Join(s.ContentPath(), filepath.FromSlash(rel))
	if _, err := s.fs.Stat(target); err == nil {
		return nil, status.ErrPostExists.WrapMessage("%s", rel)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	fm := model.FrontMatter{
		Title: strings.TrimSpace(title),
		Date:  at,
		Draft: true,
	}
	content, err := model.MarshalFrontMatter(fm, nil)
	if err != nil {
		return nil, err
	}
	if err = s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}
	if err = afero.WriteFile(s.fs, target, content, 0644); err != nil {
		return nil, err
	}
	s.l.Info("created post", zap.String("path", rel), zap.String("slug", slug))
	return &model.PostDescriptor{Slug: slug, Path: rel, FrontMatter: fm}, nil
}

// ListPosts parses all posts and returns them newest first.
// Drafts are excluded unless includeDrafts is set. Posts that fail to parse
// are skipped with a warning: lint is the strict path.
func (s *Site) ListPosts(includeDrafts bool) ([]model.PostDescriptor, error) {
	files, err := s.postFiles()
	if err != nil {
		return nil, err
	}
	posts := make([]model.PostDescriptor, 0, len(files))
	for _, rel := range files {
		desc, perr := s.readPost(rel)
		if perr != nil {
			s.l.Warn("skipping unparseable post", zap.String("path", rel), zap.Error(perr))
			continue
		}
		if desc.FrontMatter.Draft && !includeDrafts {
			continue
		}
		posts = append(posts, *desc)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].FrontMatter.Date.Equal(posts[j].FrontMatter.Date) {
			return posts[i].FrontMatter.Date.After(posts[j].FrontMatter.Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// GetPost finds a post by slug anywhere under the content tree.
func (s *Site) GetPost(slug string) (*model.PostDescriptor, error) {
	files, err := s.postFiles()
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		if slugOf(rel) != slug {
			continue
		}
		return s.readPost(rel)
	}
	return nil, status.ErrPostNotFound.WrapMessage("%s", slug)
}

// postFiles lists markdown files under the content tree, as sorted
// slash-separated paths relative to the content directory.
func (s *Site) postFiles() ([]string, error) {
	root := s.ContentPath()
	var files []string
	err := afero.Walk(s.fs, root, func(p string, info os.FileInfo, werr error) error {
		if werr != nil {
			if os.IsNotExist(werr) && p == root {
				return nil
			}
			return werr
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := postExtensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// readPost parses one post file given its path relative to the content
// directory.
func (s *Site) readPost(rel string) (*model.PostDescriptor, error) {
	raw, err := afero.ReadFile(s.fs, filepath.Join(s.ContentPath(), filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	fm, body, err := model.ParseFrontMatter(raw)
	if err != nil {
		return nil, err
	}
	return &model.PostDescriptor{
		Slug:        slugOf(rel),
		Path:        rel,
		FrontMatter: fm,
		BodySize:    int64(len(body)),
	}, nil
}

func slugOf(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
