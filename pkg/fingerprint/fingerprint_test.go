package fingerprint

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/internal/rand"
)

func writeFile(t testing.TB, fs afero.Fs, path string, content []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, content, 0600))
}

func TestProcessDeterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "post.md", []byte("# a post\n\nsome body\n"))

	maker := New(Fs(fs))
	first, err := maker.Process("post.md")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := maker.Process("post.md")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessDetectsChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "a.md", []byte("version one"))
	writeFile(t, fs, "b.md", []byte("version two"))

	maker := New(Fs(fs))
	da, err := maker.Process("a.md")
	require.NoError(t, err)
	db, err := maker.Process("b.md")
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestProcessChunked(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte(rand.LetterString(10 * 1024))
	writeFile(t, fs, "large.bin", content)

	// force several leaves through a small leaf size
	maker := New(Fs(fs), LeafSize(1024), NumberOfWorkers(4))
	first, err := maker.Process("large.bin")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := maker.Process("large.bin")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// an exact multiple of the leaf size has no short trailing leaf
	writeFile(t, fs, "exact.bin", bytes.Repeat([]byte{0x2a}, 4096))
	_, err = maker.Process("exact.bin")
	require.NoError(t, err)
}

func TestProcessDigestSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "post.md", []byte("content"))

	digest, err := New(Fs(fs), Size(32)).Process("post.md")
	require.NoError(t, err)
	assert.Len(t, digest, 32)
}

func TestProcessEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "empty.md", nil)

	digest, err := New(Fs(fs)).Process("empty.md")
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestProcessMissingFile(t *testing.T) {
	_, err := New(Fs(afero.NewMemMapFs())).Process("nope.md")
	require.Error(t, err)
}
