package errors

import (
	stderr "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorChain(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("top").Wrap(e2)

	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, stderr.Is(e, e1))
	assert.Equal(t, e2, e.Unwrap())
}

func TestErrorMessageIncludesCause(t *testing.T) {
	sentinel := New("build failed")
	assert.Equal(t, "build failed", sentinel.Error())

	wrapped := sentinel.Wrap(stderr.New("exit status 1"))
	assert.Equal(t, "build failed: exit status 1", wrapped.Error())

	// wrapping must not mutate the sentinel itself
	assert.Equal(t, "build failed", sentinel.Error())
	assert.True(t, Is(wrapped, sentinel))
}

func TestWrapMessage(t *testing.T) {
	sentinel := New("push rejected")
	err := sentinel.WrapMessage("remote %q, branch %q", "origin", "master")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `remote "origin"`)
	assert.True(t, Is(err, sentinel))
}

func TestConcurrentWrapsAreIndependent(t *testing.T) {
	sentinel := New("not found")
	a := sentinel.Wrap(stderr.New("a"))
	b := sentinel.Wrap(stderr.New("b"))
	assert.NotEqual(t, a.Error(), b.Error())
	assert.True(t, Is(a, sentinel))
	assert.True(t, Is(b, sentinel))
}
