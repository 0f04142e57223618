// Package gcs implements the backup storage interface on Google Cloud Storage.
package gcs

import (
	"context"
	"io"
	"path"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/xsymphony/blogpub/pkg/storage"
	"github.com/xsymphony/blogpub/pkg/storage/status"
)

type gcs struct {
	client         *gcsStorage.Client
	readOnlyClient *gcsStorage.Client
	bucket         string
	prefix         string
	l              *zap.Logger
}

// New builds a gcs storage object to access objects in a bucket.
//
// A credential file may be provided to override the default application
// credentials. An object name prefix namespaces all keys in the bucket.
func New(ctx context.Context, bucket, credentialFile string, opts ...Option) (storage.Store, error) {
	googleStore := &gcs{
		bucket: bucket,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(googleStore)
	}

	readOnly := []option.ClientOption{option.WithScopes(gcsStorage.ScopeReadOnly)}
	fullControl := []option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}
	if credentialFile != "" {
		readOnly = append(readOnly, option.WithCredentialsFile(credentialFile))
		fullControl = append(fullControl, option.WithCredentialsFile(credentialFile))
	}

	var err error
	googleStore.readOnlyClient, err = gcsStorage.NewClient(ctx, readOnly...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	googleStore.client, err = gcsStorage.NewClient(ctx, fullControl...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return googleStore, nil
}

func (g *gcs) String() string {
	if g.prefix == "" {
		return "gcs://" + g.bucket
	}
	return "gcs://" + g.bucket + "/" + g.prefix
}

// object maps a store key to its object name in the bucket
func (g *gcs) object(key string) string {
	if g.prefix == "" {
		return key
	}
	return path.Join(g.prefix, key)
}

// key maps an object name in the bucket back to a store key
func (g *gcs) key(object string) string {
	if g.prefix == "" {
		return object
	}
	return strings.TrimPrefix(strings.TrimPrefix(object, g.prefix), "/")
}

func (g *gcs) Has(ctx context.Context, objectName string) (bool, error) {
	g.l.Debug("start has", zap.String("object", objectName))
	_, err := g.readOnlyClient.Bucket(g.bucket).Object(g.object(objectName)).Attrs(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return false, nil
		}
		return false, toSentinelErrors(err)
	}
	return true, nil
}

type gcsReader struct {
	objectReader io.ReadCloser
}

func (r gcsReader) WriteTo(writer io.Writer) (n int64, err error) {
	return storage.PipeIO(writer, r.objectReader)
}

func (r gcsReader) Close() error {
	return r.objectReader.Close()
}

func (r gcsReader) Read(p []byte) (n int, err error) {
	return r.objectReader.Read(p)
}

func (g *gcs) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	g.l.Debug("start get", zap.String("object", objectName))
	objectReader, err := g.readOnlyClient.Bucket(g.bucket).Object(g.object(objectName)).NewReader(ctx)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return gcsReader{objectReader: objectReader}, nil
}

func (g *gcs) Put(ctx context.Context, objectName string, reader io.Reader, doesNotExist bool) error {
	g.l.Debug("start put", zap.String("object", objectName))
	object := g.client.Bucket(g.bucket).Object(g.object(objectName))
	if doesNotExist {
		object = object.If(gcsStorage.Conditions{DoesNotExist: true})
	}
	writer := object.NewWriter(ctx)
	if _, err := storage.PipeIO(writer, reader); err != nil {
		return toSentinelErrors(err)
	}
	return toSentinelErrors(writer.Close())
}

func (g *gcs) Delete(ctx context.Context, objectName string) error {
	g.l.Debug("start delete", zap.String("object", objectName))
	return toSentinelErrors(g.client.Bucket(g.bucket).Object(g.object(objectName)).Delete(ctx))
}

func (g *gcs) Keys(ctx context.Context) ([]string, error) {
	g.l.Debug("start keys")
	var (
		keys, page []string
		pageToken  string
		err        error
	)
	for {
		page, pageToken, err = g.KeysPrefix(ctx, pageToken, "", "", defaultPageSize)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)
		if pageToken == "" {
			break
		}
	}
	return keys, nil
}

const defaultPageSize = 1000

func (g *gcs) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	g.l.Debug("start keys prefix", zap.String("prefix", prefix))
	itr := g.readOnlyClient.Bucket(g.bucket).Objects(ctx, &gcsStorage.Query{
		Prefix:    g.object(prefix),
		Delimiter: delimiter,
	})

	var objects []*gcsStorage.ObjectAttrs
	nextPageToken, err := iterator.NewPager(itr, count, pageToken).NextPage(&objects)
	if err != nil {
		return nil, "", toSentinelErrors(err)
	}

	keys := make([]string, 0, len(objects))
	for _, attrs := range objects {
		name := attrs.Name
		if name == "" {
			// a synthetic entry standing for a collapsed common prefix
			name = attrs.Prefix
		}
		keys = append(keys, g.key(name))
	}
	return keys, nextPageToken, nil
}

func (g *gcs) Clear(ctx context.Context) error {
	return status.ErrNotSupported
}
