package storage

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// Instrument decorates a store with debug logging on every operation.
func Instrument(l *zap.Logger, store Store) Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &instrumentedStore{
		store: store,
		l:     l.With(zap.String("store", store.String())),
	}
}

type instrumentedStore struct {
	store Store
	l     *zap.Logger
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (bool, error) {
	i.l.Debug("storage has", zap.String("key", key))
	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	i.l.Debug("storage get", zap.String("key", key))
	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, rdr io.Reader, doesNotExist bool) error {
	i.l.Debug("storage put", zap.String("key", key), zap.Bool("exclusive", doesNotExist))
	return i.store.Put(ctx, key, rdr, doesNotExist)
}

func (i *instrumentedStore) Delete(ctx context.Context, key string) error {
	i.l.Debug("storage delete", zap.String("key", key))
	return i.store.Delete(ctx, key)
}

func (i *instrumentedStore) Keys(ctx context.Context) ([]string, error) {
	i.l.Debug("storage keys")
	return i.store.Keys(ctx)
}

func (i *instrumentedStore) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	i.l.Debug("storage keys with prefix", zap.String("prefix", prefix))
	return i.store.KeysPrefix(ctx, pageToken, prefix, delimiter, count)
}

func (i *instrumentedStore) Clear(ctx context.Context) error {
	i.l.Debug("storage clear")
	return i.store.Clear(ctx)
}
