package localfs

import (
	"bytes"
	"context"
	"io/ioutil"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/errors"
	"github.com/xsymphony/blogpub/pkg/storage"
	"github.com/xsymphony/blogpub/pkg/storage/status"
)

func TestHas(t *testing.T) {
	bs := setupStore(t)

	has, err := bs.Has(context.Background(), "files/content/post/welcome.md")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "files/config.toml")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "files/content/post/missing.md")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "files/content/post/welcome.md")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "# welcome", string(b))
	require.NoError(t, rdr.Close())

	_, err = bs.Get(context.Background(), "files/content/post/missing.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotExists))
}

func TestKeysSorted(t *testing.T) {
	bs := setupStore(t)

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"files/config.toml", "files/content/post/welcome.md"}, keys)
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Delete(context.Background(), "files/config.toml"))
	k, _ := bs.Keys(context.Background())
	assert.Len(t, k, 1)

	// deleting a missing key is not an error
	require.NoError(t, bs.Delete(context.Background(), "files/config.toml"))
}

func TestClear(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Clear(context.Background()))
	k, _ := bs.Keys(context.Background())
	require.Empty(t, k)
}

func TestPut(t *testing.T) {
	bs := setupStore(t)

	content := bytes.NewBufferString("draft: true")
	err := bs.Put(context.Background(), "files/content/post/wip.md", content, storage.NoOverWrite)
	require.NoError(t, err)

	rdr, err := bs.Get(context.Background(), "files/content/post/wip.md")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "draft: true", string(b))

	k, _ := bs.Keys(context.Background())
	assert.Len(t, k, 3)
}

func TestPutNoOverWrite(t *testing.T) {
	bs := setupStore(t)

	err := bs.Put(context.Background(), "files/config.toml", strings.NewReader("x"), storage.NoOverWrite)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrExists))

	// overwrite truncates previous content
	require.NoError(t, bs.Put(context.Background(), "files/config.toml", strings.NewReader("x"), storage.OverWrite))
	rdr, err := bs.Get(context.Background(), "files/config.toml")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}

func setupStore(t testing.TB) storage.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	fakeFile(t, fs, "files/content/post/welcome.md", "# welcome")
	fakeFile(t, fs, "files/config.toml", "baseURL = \"https://blog.example.com\"")
	return New(fs)
}

func fakeFile(t testing.TB, fs afero.Fs, file, text string) {
	f, err := fs.Create(file)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func setupManyKeys(t testing.TB) storage.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	for i := 0; i < 10; i++ {
		fakeFile(t, fs, "files/content/post/p-"+strconv.Itoa(i)+".md", "p")
		fakeFile(t, fs, "files/static/img-"+strconv.Itoa(i)+".png", "i")
		fakeFile(t, fs, "snapshots/s-"+strconv.Itoa(i)+"/snapshot.yaml", "s")
	}
	return New(fs)
}

func TestKeysPrefixPaging(t *testing.T) {
	store := setupManyKeys(t)

	var (
		keys []string
		next string
		err  error
	)

	// 30 keys in pages of 8: three full pages, then a remainder of 6
	i := 0
	for keys, next, err = store.KeysPrefix(context.Background(), "", "", "", 8); next != ""; keys, next, err = store.KeysPrefix(context.Background(), next, "", "", 8) {
		require.NoError(t, err)
		assert.Len(t, keys, 8)
		i++
	}
	require.NoError(t, err)
	assert.Len(t, keys, 6)
	assert.Equal(t, 3, i)

	// a prefix narrowing to a single page
	keys, next, err = store.KeysPrefix(context.Background(), "", "snapshots/", "", 100)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, keys, 10)

	// an unknown page token yields an empty page
	keys, next, err = store.KeysPrefix(context.Background(), "zzz", "files/", "", 5)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, next)

	// a leading separator on the prefix is tolerated
	keys, _, err = store.KeysPrefix(context.Background(), "", "/snapshots/", "", 100)
	require.NoError(t, err)
	assert.Len(t, keys, 10)
}

func TestKeysPrefixWithDelimiter(t *testing.T) {
	store := setupManyKeys(t)

	// collapse on "/" lists the two top level directories under files/
	keys, next, err := store.KeysPrefix(context.Background(), "", "files/", "/", 10)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Equal(t, []string{"files/content/", "files/static/"}, keys)

	// collapse on "-" groups the snapshot directories
	keys, _, err = store.KeysPrefix(context.Background(), "", "snapshots/", "-", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/s-"}, keys)
}
