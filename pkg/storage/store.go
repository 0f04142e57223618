package storage

import (
	"context"
	"io"
	"sync"
)

// Put semantics regarding existing objects
const (
	OverWrite   = false
	NoOverWrite = true
)

// Store implementations know how to write objects to a K/V backend.
//
// Typically this is something file system-like. Examples are S3, GCS, local FS.
// Keys use "/" as the path separator regardless of backend.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, source io.Reader, doesNotExist bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error)
	Clear(context.Context) error
}

const pipeBufferSize = 32 * 1024

var pipePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, pipeBufferSize)
		return &b
	},
}

// PipeIO copies a reader to a writer with a pooled intermediate buffer.
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	buf := pipePool.Get().(*[]byte)
	defer pipePool.Put(buf)
	return io.CopyBuffer(writer, reader, *buf)
}
