package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key := ImportKey("rubric.yaml")
	got, err := s.Put(key, strings.NewReader("name: R\n"))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	rc, err := s.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "name: R\n", string(b))
}

func TestFSStoreRejectsEscapes(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x", "/etc/passwd", "a/../../b"} {
		_, err := s.Put(key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestImportKey(t *testing.T) {
	k := ImportKey(`C:\Users\me\rubric.csv`)
	assert.True(t, strings.HasPrefix(k, "imports/"))
	assert.True(t, strings.HasSuffix(k, "/rubric.csv"))
	assert.Len(t, strings.Split(k, "/"), 3)

	assert.True(t, strings.HasSuffix(ImportKey(""), "/upload"))
	assert.NotEqual(t, ImportKey("a.json"), ImportKey("a.json"))
}
